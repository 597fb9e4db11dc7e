package usersgorm

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
)

type Repo struct{ db *gorm.DB }

func New(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateUser(ctx context.Context, u *User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *Repo) GetUser(ctx context.Context, id string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	var u User
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repo) ListUsers(ctx context.Context) ([]*User, error) {
	var arr []*User
	if err := r.db.WithContext(ctx).Order("email").Find(&arr).Error; err != nil {
		return nil, err
	}
	return arr, nil
}

// Lookup resolves user ids to display actors. Unknown ids are left out.
func (r *Repo) Lookup(ctx context.Context, ids []string) (map[string]workflow.Actor, error) {
	out := make(map[string]workflow.Actor, len(ids))
	uniq := make([]string, 0, len(ids))
	seen := map[string]struct{}{}
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		uniq = append(uniq, id)
	}
	if len(uniq) == 0 {
		return out, nil
	}
	var arr []User
	if err := r.db.WithContext(ctx).Where("id IN ?", uniq).Find(&arr).Error; err != nil {
		return nil, err
	}
	for i := range arr {
		u := &arr[i]
		out[u.ID] = workflow.Actor{ID: u.ID, Name: u.DisplayName(), Email: u.Email}
	}
	return out, nil
}
