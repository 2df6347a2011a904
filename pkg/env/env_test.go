package env

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type EnvTestSuite struct {
	suite.Suite
}

func (s *EnvTestSuite) TestProcess() {
	assert.Nil(s.T(), Process())
	assert.NotNil(s.T(), Variables())
	assert.Equal(s.T(), "info", Variables().LogLevel)
	assert.Equal(s.T(), 100, Variables().BatchSize)
	assert.Equal(s.T(), "equilib", Variables().Engine)
}

func (s *EnvTestSuite) TestProcessInvalidTypeFailure() {
	os.Setenv("REFORMER_PORT", "not_a_port")
	defer os.Unsetenv("REFORMER_PORT")
	assert.NotNil(s.T(), Process())
}

func (s *EnvTestSuite) TestProcessInvalidLogLevelFailure() {
	os.Setenv("REFORMER_LOG_LEVEL", "bogus")
	defer os.Unsetenv("REFORMER_LOG_LEVEL")
	assert.NotNil(s.T(), Process())
}

func TestEnvTestSuite(t *testing.T) {
	suite.Run(t, new(EnvTestSuite))
}
