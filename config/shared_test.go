// The Licensed Work is (c) 2022 Sygma
// SPDX-License-Identifier: LGPL-3.0-only

package config_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/sprintertech/sprinter-bridge/config"
)

type SharedConfigTestSuite struct {
	suite.Suite
}

func TestRunSharedConfigTestSuite(t *testing.T) {
	suite.Run(t, new(SharedConfigTestSuite))
}

func (s *SharedConfigTestSuite) Test_UnreachableURL() {
	_, err := config.GetSharedConfigFromNetwork("http://127.0.0.1:1")

	s.NotNil(err)
}

func (s *SharedConfigTestSuite) Test_ErrorStatus() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := config.GetSharedConfigFromNetwork(server.URL)

	s.NotNil(err)
}

func (s *SharedConfigTestSuite) Test_ValidConfig() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"chains": [
				{"id": 10, "name": "optimism", "relayers": ["0x5c7BCd6E7De5423a257D81B442095A1a6ced35C6"]}
			],
			"limits": {"globalDailyLimit": "1000000"}
		}`))
	}))
	defer server.Close()

	rawConfig, err := config.GetSharedConfigFromNetwork(server.URL)

	s.Nil(err)
	s.Equal(uint64(10), rawConfig.Chains[0].Id)
	s.Equal("optimism", rawConfig.Chains[0].Name)
	s.Equal("1000000", rawConfig.Limits.GlobalDailyLimit)
}
