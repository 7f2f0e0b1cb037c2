// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
)

// GetSharedConfigFromNetwork fetches raw JSON configuration served at url.
// The result is used as the base layer under file or env configuration so
// operators can share chain and limit topology across deployments.
func GetSharedConfigFromNetwork(url string) (*RawConfig, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching shared configuration returned status %d", resp.StatusCode)
	}

	rawConfig := &RawConfig{}
	v := viper.New()
	v.SetConfigType("json")
	if err := v.ReadConfig(resp.Body); err != nil {
		return nil, err
	}
	if err := v.Unmarshal(rawConfig); err != nil {
		return nil, err
	}

	return rawConfig, nil
}
