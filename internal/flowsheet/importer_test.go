package flowsheet

import (
	"context"
	"strings"
	"testing"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/testutil"
	"github.com/reformlab/reformer/pkg/flowsheet"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ImporterTestSuite struct {
	suite.Suite
	db       *gorm.DB
	importer *Importer
}

func TestImporterSuite(t *testing.T) {
	suite.Run(t, new(ImporterTestSuite))
}

func (s *ImporterTestSuite) SetupTest() {
	s.db = testutil.OpenTestDB(s.T())
	s.importer = NewImporter(s.db)
}

func (s *ImporterTestSuite) TearDownTest() {
	testutil.CloseDB(s.db)
}

func (s *ImporterTestSuite) TestApplyCreatesRecord() {
	result, err := s.importer.Apply(context.Background(), []byte(testutil.SampleModel))
	s.Require().NoError(err)
	s.Equal(ActionCreated, result.Action)
	s.Equal("steam-reforming-pilot", result.Model.Name)
	s.Equal("equilib", result.Model.Engine)
	s.Equal("pilot-a", result.Model.Labels["plant"])
	s.NotEmpty(result.Model.Checksum)

	testutil.AssertCount(s.T(), s.db, &models.ModelDefinition{}, 1)
}

func (s *ImporterTestSuite) TestReapplyIdenticalSourceIsUnchanged() {
	ctx := context.Background()
	_, err := s.importer.Apply(ctx, []byte(testutil.SampleModel))
	s.Require().NoError(err)

	result, err := s.importer.Apply(ctx, []byte(testutil.SampleModel))
	s.Require().NoError(err)
	s.Equal(ActionUnchanged, result.Action)
	testutil.AssertCount(s.T(), s.db, &models.ModelDefinition{}, 1)
}

func (s *ImporterTestSuite) TestApplyChangedSourceUpdates() {
	ctx := context.Background()
	_, err := s.importer.Apply(ctx, []byte(testutil.SampleModel))
	s.Require().NoError(err)

	changed := strings.Replace(testutil.SampleModel, "version: V8.8", "version: V9.0", 1)
	result, err := s.importer.Apply(ctx, []byte(changed))
	s.Require().NoError(err)
	s.Equal(ActionUpdated, result.Action)
	s.Equal("V9.0", result.Model.Version)
	testutil.AssertCount(s.T(), s.db, &models.ModelDefinition{}, 1)
}

func (s *ImporterTestSuite) TestApplyWithProvenance() {
	prov := &Provenance{
		SourceID: "lab-models",
		Repo:     "https://example.com/models.git",
		Ref:      "refs/heads/main",
		Commit:   "abcdef123",
		Path:     "models/pilot.yaml",
	}

	result, err := s.importer.ApplyWithOptions(context.Background(), []byte(testutil.SampleModel),
		&ApplyOptions{Source: "git", Provenance: prov})
	s.Require().NoError(err)
	s.Equal("lab-models", result.Model.SourceID)
	s.Equal(prov.Repo, result.Model.Repo)
	s.Equal(prov.Commit, result.Model.Commit)
	s.Equal(prov.Path, result.Model.Path)
}

func (s *ImporterTestSuite) TestApplyInvalidDefinitionFails() {
	_, err := s.importer.Apply(context.Background(), []byte("apiVersion: v1\nkind: Model\n"))
	s.Error(err)
	testutil.AssertCount(s.T(), s.db, &models.ModelDefinition{}, 0)
}

func (s *ImporterTestSuite) TestGetParsesStoredSource() {
	ctx := context.Background()
	_, err := s.importer.Apply(ctx, []byte(testutil.SampleModel))
	s.Require().NoError(err)

	def, model, err := s.importer.Get(ctx, "steam-reforming-pilot")
	s.Require().NoError(err)
	s.Equal("steam-reforming-pilot", def.Metadata.Name)
	s.Equal(model.Checksum, Checksum([]byte(model.Source)))
}

func (s *ImporterTestSuite) TestGetMissingModel() {
	_, _, err := s.importer.Get(context.Background(), "nope")
	s.ErrorIs(err, ErrModelNotFound)
}

func (s *ImporterTestSuite) TestResolveBuiltinAndRegistry() {
	ctx := context.Background()

	def, err := s.importer.Resolve(ctx, "")
	s.Require().NoError(err)
	s.Equal(flowsheet.DefaultName, def.Metadata.Name)

	_, err = s.importer.Apply(ctx, []byte(testutil.SampleModel))
	s.Require().NoError(err)

	def, err = s.importer.Resolve(ctx, "steam-reforming-pilot")
	s.Require().NoError(err)
	s.Equal("steam-reforming-pilot", def.Metadata.Name)

	_, err = s.importer.Resolve(ctx, "never-registered")
	s.ErrorIs(err, ErrModelNotFound)
}
