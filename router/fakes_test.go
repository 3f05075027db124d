package router_test

import (
	"bytes"
	"context"
	"fmt"
	"go-property-api/model"
	"go-property-api/repository"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memUsers is an in-memory IUserRepository with the same uniqueness rules as the Mongo indexes.
type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]model.User{}}
}

func (m *memUsers) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email || u.Username == user.Username {
			return repository.ErrDuplicateKey
		}
	}
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.ID] = *user
	return nil
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) FindByEmailOrUsername(_ context.Context, email, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) update(id primitive.ObjectID, fn func(u *model.User)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	fn(&u)
	u.UpdatedAt = time.Now().UTC()
	m.users[id] = u
	return nil
}

func (m *memUsers) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	return m.update(id, func(u *model.User) { u.RefreshToken = token })
}

func (m *memUsers) ReplaceRefreshToken(_ context.Context, id primitive.ObjectID, current, next string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.RefreshToken != current {
		return false, nil
	}
	u.RefreshToken = next
	m.users[id] = u
	return true, nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	return m.update(id, func(u *model.User) { u.Password = hash })
}

func (m *memUsers) UpdateProfile(_ context.Context, id primitive.ObjectID, p model.ProfileUpdate) (*model.User, error) {
	m.mu.Lock()
	for otherID, u := range m.users {
		if otherID != id && p.Username != "" && u.Username == p.Username {
			m.mu.Unlock()
			return nil, repository.ErrDuplicateKey
		}
	}
	m.mu.Unlock()

	err := m.update(id, func(u *model.User) {
		if p.FullName != "" {
			u.FullName = p.FullName
		}
		if p.Username != "" {
			u.Username = p.Username
		}
		if p.Avatar != "" {
			u.Avatar = p.Avatar
		}
	})
	if err != nil {
		return nil, err
	}
	return m.FindByID(context.Background(), id)
}

func (m *memUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

// memProperties is an in-memory IPropertyRepository. Listing supports the owner filter
// and equality on the other fields, sorted by createdAt.
type memProperties struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]model.Property
}

func newMemProperties() *memProperties {
	return &memProperties{items: map[primitive.ObjectID]model.Property{}}
}

func (m *memProperties) Create(_ context.Context, p *model.Property) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	if p.Tags == nil {
		p.Tags = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	m.items[p.ID] = *p
	return nil
}

func (m *memProperties) FindByID(_ context.Context, id primitive.ObjectID) (*model.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memProperties) Update(_ context.Context, id primitive.ObjectID, patch model.PropertyPatch) (*model.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Address != nil {
		p.Address = *patch.Address
	}
	if patch.PropertyType != nil {
		p.PropertyType = *patch.PropertyType
	}
	if patch.Area != nil {
		p.Area = *patch.Area
	}
	if patch.Tags != nil {
		p.Tags = patch.Tags
	}
	if patch.HasParking != nil {
		p.HasParking = *patch.HasParking
	}
	if patch.IsAccessible != nil {
		p.IsAccessible = *patch.IsAccessible
	}
	if patch.IsAvailable != nil {
		p.IsAvailable = *patch.IsAvailable
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Capacity != nil {
		p.Capacity = *patch.Capacity
	}
	if patch.LeaseTerm != nil {
		p.LeaseTerm = *patch.LeaseTerm
	}
	p.Images = append(append([]string{}, p.Images...), patch.NewImages...)
	p.UpdatedAt = time.Now().UTC()
	m.items[id] = p
	return &p, nil
}

func (m *memProperties) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memProperties) PullImage(_ context.Context, id primitive.ObjectID, imageURL string) (*model.Property, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	kept := []string{}
	for _, img := range p.Images {
		if img != imageURL {
			kept = append(kept, img)
		}
	}
	if len(kept) == len(p.Images) {
		return nil, repository.ErrNotFound
	}
	p.Images = kept
	m.items[id] = p
	return &p, nil
}

func fieldValue(p model.Property, name string) interface{} {
	switch name {
	case "owner":
		return p.Owner
	case "title":
		return p.Title
	case "propertyType":
		return string(p.PropertyType)
	case "leaseTerm":
		return string(p.LeaseTerm)
	case "hasParking":
		return p.HasParking
	case "isAvailable":
		return p.IsAvailable
	case "capacity":
		return p.Capacity
	case "price":
		return p.Price
	}
	return fmt.Sprintf("unsupported:%s", name)
}

func (m *memProperties) List(_ context.Context, q model.ListQuery) ([]model.Property, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []model.Property{}
	for _, p := range m.items {
		ok := true
		for name, want := range q.Filters {
			if fieldValue(p, name) != want {
				ok = false
				break
			}
		}
		if ok {
			matched = append(matched, p)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if q.Desc {
			a, b = b, a
		}
		return a.CreatedAt.Before(b.CreatedAt) ||
			(a.CreatedAt.Equal(b.CreatedAt) && bytes.Compare(a.ID[:], b.ID[:]) < 0)
	})

	total := int64(len(matched))
	start := q.Skip()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// cdnUploader pretends every file lands on a CDN under its base name.
type cdnUploader struct{}

func (cdnUploader) Upload(_ context.Context, localPath string) (string, error) {
	return "https://cdn.example.com/" + filepath.Base(localPath), nil
}
