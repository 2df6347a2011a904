package secret

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"
)

type FileResolverSuite struct {
	suite.Suite
	dir      string
	resolver *FileResolver
}

func TestFileResolverSuite(t *testing.T) {
	suite.Run(t, new(FileResolverSuite))
}

func (s *FileResolverSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.resolver = NewFileResolver(FileConfig{Dir: s.dir})
}

func (s *FileResolverSuite) write(name, content string) {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.MkdirAll(filepath.Dir(path), 0o755))
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
}

func (s *FileResolverSuite) TestResolveFlatFile() {
	s.write("db-password", "hunter2\n")
	value, err := s.resolver.Resolve(context.Background(), "secret://file/db-password")
	s.Require().NoError(err)
	s.Equal("hunter2", value)
}

func (s *FileResolverSuite) TestResolveNestedPath() {
	s.write(filepath.Join("postgres", "dsn"), "host=db user=lab")
	value, err := s.resolver.Resolve(context.Background(), "secret://file/postgres/dsn")
	s.Require().NoError(err)
	s.Equal("host=db user=lab", value)
}

func (s *FileResolverSuite) TestMissingFileFails() {
	_, err := s.resolver.Resolve(context.Background(), "secret://file/nothing-here")
	s.Require().Error(err)
}

func (s *FileResolverSuite) TestEscapeAttemptFails() {
	_, err := s.resolver.Resolve(context.Background(), "secret://file/../outside")
	s.Require().Error(err)
}

func (s *FileResolverSuite) TestUnconfiguredDirectoryFails() {
	resolver := NewFileResolver(FileConfig{})
	_, err := resolver.Resolve(context.Background(), "secret://file/db-password")
	s.Require().Error(err)
}

func (s *FileResolverSuite) TestWrongProviderFails() {
	_, err := s.resolver.Resolve(context.Background(), "secret://env/FOO")
	s.Require().Error(err)
}
