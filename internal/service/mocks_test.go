package service

import (
	"bytes"
	"context"
	"mime/multipart"
	"testing"
	"time"

	"mess_finder/internal/model"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int) (*model.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*model.User)
	return user, args.Error(1)
}

func (m *mockUserRepo) FindAll(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]model.User)
	return users, args.Error(1)
}

func (m *mockUserRepo) Delete(ctx context.Context, id int) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type mockMessRepo struct {
	mock.Mock
}

func (m *mockMessRepo) Create(ctx context.Context, mess *model.Mess) error {
	return m.Called(ctx, mess).Error(0)
}

func (m *mockMessRepo) FindByID(ctx context.Context, id int) (*model.Mess, error) {
	args := m.Called(ctx, id)
	mess, _ := args.Get(0).(*model.Mess)
	return mess, args.Error(1)
}

func (m *mockMessRepo) FindAll(ctx context.Context, filters model.MessFilters) ([]model.Mess, error) {
	args := m.Called(ctx, filters)
	messes, _ := args.Get(0).([]model.Mess)
	return messes, args.Error(1)
}

func (m *mockMessRepo) FindByOwner(ctx context.Context, ownerID int) ([]model.Mess, error) {
	args := m.Called(ctx, ownerID)
	messes, _ := args.Get(0).([]model.Mess)
	return messes, args.Error(1)
}

func (m *mockMessRepo) Update(ctx context.Context, id, ownerID int, in model.UpdateMessInput) (*model.Mess, *string, error) {
	args := m.Called(ctx, id, ownerID, in)
	mess, _ := args.Get(0).(*model.Mess)
	prev, _ := args.Get(1).(*string)
	return mess, prev, args.Error(2)
}

func (m *mockMessRepo) Delete(ctx context.Context, id, ownerID int) (*model.Mess, error) {
	args := m.Called(ctx, id, ownerID)
	mess, _ := args.Get(0).(*model.Mess)
	return mess, args.Error(1)
}

func (m *mockMessRepo) FindImagesByOwner(ctx context.Context, ownerID int) ([]string, error) {
	args := m.Called(ctx, ownerID)
	images, _ := args.Get(0).([]string)
	return images, args.Error(1)
}

type mockDenylist struct {
	mock.Mock
}

func (m *mockDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *mockDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, key string, v any) error {
	return m.Called(ctx, key, v).Error(0)
}

// newFileHeader builds a multipart file header the way net/http parses one
func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["image"][0]
}

func strPtr(s string) *string { return &s }
