package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidNamespace = errors.New("namespace is incomplete")
	ErrInvalidKey       = errors.New("item key is empty")
	ErrInvalidValue     = errors.New("item value is not a json document")
)

const CategoryProfile = "profile"

// Namespace scopes items to one category of one user.
type Namespace struct {
	Category string
	UserID   string
}

func ProfileNamespace(userID string) Namespace {
	return Namespace{Category: CategoryProfile, UserID: userID}
}

func (n Namespace) Validate() error {
	if strings.TrimSpace(n.Category) == "" || strings.TrimSpace(n.UserID) == "" {
		return fmt.Errorf("%w: category=%q user_id=%q", ErrInvalidNamespace, n.Category, n.UserID)
	}
	return nil
}

// Key renders the namespace as "category:user_id".
func (n Namespace) Key() string {
	return strings.TrimSpace(n.Category) + ":" + strings.TrimSpace(n.UserID)
}

func (n Namespace) String() string {
	return n.Key()
}

type Item struct {
	Namespace Namespace       `json:"-"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store is the long-term memory contract used by the profile updater and the
// decision step. Search returns the most recently updated item first.
type Store interface {
	Search(ctx context.Context, ns Namespace) ([]Item, error)
	Put(ctx context.Context, ns Namespace, key string, value json.RawMessage) error
}

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverUpstash  Driver = "upstash"
	DriverPostgres Driver = "postgres"
)

type Config struct {
	Driver Driver `envconfig:"DRIVER" split_words:"true" default:"memory"`
}

func checkPut(ns Namespace, key string, value json.RawMessage) error {
	if err := ns.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if !json.Valid(value) {
		return ErrInvalidValue
	}
	return nil
}

func sortNewestFirst(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
}
