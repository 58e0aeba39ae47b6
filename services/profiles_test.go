package services

import (
	"context"
	"strings"
	"testing"

	"github.com/BinLe1988/cofounder-match/models"
	"github.com/BinLe1988/cofounder-match/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProfile(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	p := e.createProfile(t, "user-a", "Ada Lovelace")
	assert.True(t, p.IsActive)
	assert.True(t, p.IsComplete)
	require.NotNil(t, p.Username)
	assert.Equal(t, "ada-lovelace", *p.Username)

	_, err := e.profiles.Create(ctx, "user-a", models.CreateProfileRequest{Name: "Again"})
	require.ErrorIs(t, err, errs.ErrConflict)
	assert.EqualError(t, err, "profile already exists")
}

func TestCreateProfileGeneratesUniqueUsername(t *testing.T) {
	e := newTestEnv(t)

	first := e.createProfile(t, "user-a", "Sam")
	second := e.createProfile(t, "user-b", "Sam")
	third := e.createProfile(t, "user-c", "Sam")

	assert.Equal(t, "sam", *first.Username)
	assert.Equal(t, "sam-2", *second.Username)
	assert.Equal(t, "sam-3", *third.Username)
}

func TestCreateIncompleteProfile(t *testing.T) {
	e := newTestEnv(t)

	p, err := e.profiles.Create(context.Background(), "user-a", models.CreateProfileRequest{Name: "Ada"})
	require.NoError(t, err)
	assert.False(t, p.IsComplete)
	assert.NotNil(t, p.Skills)
}

func TestUpdateProfileTouchesOnlyProvidedFields(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createProfile(t, "user-a", "Ada")

	bio := ""
	location := "Lisbon"
	updated, err := e.profiles.Update(ctx, "user-a", models.ProfileUpdate{Bio: &bio, Location: &location})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "Lisbon", updated.Location)
	assert.Equal(t, []string{"go", "postgres"}, []string(updated.Skills))
	assert.False(t, updated.IsComplete, "bio cleared")

	view, err := e.profiles.GetCurrent(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", view.Location)

	_, err = e.profiles.Update(ctx, "user-z", models.ProfileUpdate{Bio: &bio})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestGetCurrentWithoutProfile(t *testing.T) {
	e := newTestEnv(t)

	view, err := e.profiles.GetCurrent(context.Background(), "user-a")
	require.NoError(t, err)
	assert.Nil(t, view)
}

func TestPhotos(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	// 没有资料时先创建占位资料
	p, err := e.profiles.AddPhoto(ctx, "user-a", "photo-1")
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.False(t, p.IsComplete)
	assert.Equal(t, []string{"photo-1"}, []string(p.Photos))

	p, err = e.profiles.AddPhoto(ctx, "user-a", "photo-2")
	require.NoError(t, err)
	assert.Equal(t, []string{"photo-1", "photo-2"}, []string(p.Photos))

	p, err = e.profiles.RemovePhoto(ctx, "user-a", "photo-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"photo-2"}, []string(p.Photos))

	view, err := e.profiles.GetCurrent(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, view.Photos, 1)
	assert.Equal(t, "photo-2", view.Photos[0].ID)
	assert.Empty(t, view.Photos[0].URL, "never uploaded")
}

func TestPhotoURLResolved(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	target, err := e.profiles.GenerateUploadURL(ctx, "user-a")
	require.NoError(t, err)
	_, err = e.store.Save(ctx, target.StorageID, "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	_, err = e.profiles.AddPhoto(ctx, "user-a", target.StorageID)
	require.NoError(t, err)

	view, err := e.profiles.GetCurrent(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, view.Photos, 1)
	assert.Equal(t, "http://localhost:8080/files/"+target.StorageID, view.Photos[0].URL)
}

func TestUsernames(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createProfile(t, "user-a", "Ada")
	e.createProfile(t, "user-b", "Grace")

	avail, err := e.profiles.CheckUsername(ctx, "user-a", "grace")
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, "Username is already taken", avail.Reason)

	avail, err = e.profiles.CheckUsername(ctx, "user-a", "ada")
	require.NoError(t, err)
	assert.True(t, avail.Available, "own username")

	avail, err = e.profiles.CheckUsername(ctx, "user-a", "-bad")
	require.NoError(t, err)
	assert.False(t, avail.Available)
	assert.Equal(t, "Username cannot start or end with a hyphen", avail.Reason)

	_, err = e.profiles.UpdateUsername(ctx, "user-a", "grace")
	assert.ErrorIs(t, err, errs.ErrConflict)

	_, err = e.profiles.UpdateUsername(ctx, "user-a", "ab")
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	p, err := e.profiles.UpdateUsername(ctx, "user-a", "Ada-Builds")
	require.NoError(t, err)
	assert.Equal(t, "ada-builds", *p.Username)

	name, err := e.profiles.GenerateUsername(ctx, "user-c", "Grace")
	require.NoError(t, err)
	assert.Equal(t, "grace-2", name)
}

func TestGetByUsernameOnlyActive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.createProfile(t, "user-a", "Ada")

	view, err := e.profiles.GetByUsername(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "user-a", view.UserID)

	_, err = e.profiles.SetActive(ctx, "user-a", false)
	require.NoError(t, err)

	_, err = e.profiles.GetByUsername(ctx, "ada")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}
