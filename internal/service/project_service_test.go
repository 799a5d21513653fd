package service

import (
	"context"
	"errors"
	"testing"

	"github.com/maheshrc27/coolify-admin/internal/coolify"
	"github.com/maheshrc27/coolify-admin/internal/models"
	"github.com/maheshrc27/coolify-admin/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncAddsAndUpdates(t *testing.T) {
	projects := &fakeProjects{
		rows:      map[int64]*models.Project{1: {ID: 1, Name: "Old name", CoolifyUUID: "p1"}},
		upsertErr: map[string]error{"p3": errors.New("value too long")},
	}
	platform := &fakePlatform{projects: []coolify.Project{
		{UUID: "p1", Name: "Shop"},
		{UUID: "p2", Name: "Blog", Description: "company blog"},
		{UUID: "p3", Name: "Broken"},
		{Name: "no uuid"},
	}}

	result, err := NewProjectService(projects, platform).Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &transfer.SyncResult{Added: 1, Updated: 1}, result)
	assert.Equal(t, "Shop", projects.rows[1].Name)

	added, ok, _ := projects.GetByUUID(context.Background(), "p2")
	require.True(t, ok)
	assert.Equal(t, "company blog", *added.Description)
}

func TestSyncCoolifyUnavailable(t *testing.T) {
	platform := &fakePlatform{err: errors.New("dial tcp: connection refused")}

	_, err := NewProjectService(&fakeProjects{rows: map[int64]*models.Project{}}, platform).Sync(context.Background())
	assert.ErrorIs(t, err, ErrDeployment)
}

func TestCreateProject(t *testing.T) {
	projects := &fakeProjects{rows: map[int64]*models.Project{1: {ID: 1, Name: "Shop", CoolifyUUID: "p1"}}}
	s := NewProjectService(projects, &fakePlatform{})
	ctx := context.Background()

	_, err := s.Create(ctx, &transfer.ProjectRequest{Name: "Shop again", CoolifyUUID: "p1"})
	assert.ErrorIs(t, err, ErrDuplicateProject)

	_, err = s.Create(ctx, &transfer.ProjectRequest{Name: "No uuid"})
	assert.ErrorIs(t, err, ErrValidation)

	p, err := s.Create(ctx, &transfer.ProjectRequest{Name: "Blog", CoolifyUUID: "p2"})
	require.NoError(t, err)
	assert.Equal(t, "p2", p.CoolifyUUID)
}

func TestProjectResources(t *testing.T) {
	platform := &fakePlatform{resources: map[string][]coolify.Resource{
		"p1": {{UUID: "app1", Kind: coolify.KindApplication}},
	}}
	s := NewProjectService(&fakeProjects{}, platform)

	resources, err := s.Resources(context.Background(), "p1")
	require.NoError(t, err)
	assert.Len(t, resources, 1)

	_, err = s.Resources(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = s.ResourceDetails(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
