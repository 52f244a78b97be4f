/*
Package ticket produces external-ticket references for findings. Only a stub issuer ships; it hands out sequential keys
in the style of an issue tracker without calling one.
*/
package ticket

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/anchore/riskboard/riskboard/model"
	"github.com/anchore/riskboard/riskboard/store"
)

const (
	DefaultProject = "SEC"
	DefaultBaseURL = "https://tickets.example.com"
	StatusOpen     = "open"
)

// Creator opens a ticket for a finding and returns the reference to persist on it.
type Creator interface {
	Create(ctx context.Context, f model.Finding) (model.Ticket, error)
}

type Config struct {
	BaseURL string `yaml:"base-url" json:"base-url" mapstructure:"base-url"`
	Project string `yaml:"project" json:"project" mapstructure:"project"`
}

func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Project: DefaultProject,
	}
}

var _ Creator = (*Stub)(nil)

// Stub issues keys of the form <PROJECT>-<n>, numbered from 1 per process.
type Stub struct {
	cfg  Config
	lock sync.Mutex
	next int
}

func NewStub(cfg Config) *Stub {
	if cfg.Project == "" {
		cfg.Project = DefaultProject
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.Project = strings.ToUpper(cfg.Project)
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Stub{cfg: cfg, next: 1}
}

// Resume moves the numbering past every key of this project that was ever attached to a finding. The activity log is
// consulted rather than the findings, since a deleted finding's key must not be handed out again.
func (s *Stub) Resume(ctx context.Context, r store.ActivityStoreReader) (*Stub, error) {
	entries, err := r.ListActivity(ctx, store.ActivityFilter{EntityType: model.EntityFinding})
	if err != nil {
		return nil, fmt.Errorf("failed to read ticket history: %w", err)
	}

	highest := 0
	for _, e := range entries {
		if e.Action != model.ActionTicketAttached {
			continue
		}
		key, ok := store.TicketKeyFromDetails(e.Details)
		if !ok {
			continue
		}
		if n, ok := s.number(key); ok && n > highest {
			highest = n
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()
	if highest >= s.next {
		s.next = highest + 1
	}
	return s, nil
}

// number parses n out of a <PROJECT>-<n> key of this stub's project.
func (s *Stub) number(key string) (int, bool) {
	digits, ok := strings.CutPrefix(strings.ToUpper(key), s.cfg.Project+"-")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (s *Stub) Create(ctx context.Context, _ model.Finding) (model.Ticket, error) {
	if err := ctx.Err(); err != nil {
		return model.Ticket{}, err
	}

	s.lock.Lock()
	n := s.next
	s.next++
	s.lock.Unlock()

	key := fmt.Sprintf("%s-%d", s.cfg.Project, n)
	return model.Ticket{
		Key:    key,
		Status: StatusOpen,
		URL:    fmt.Sprintf("%s/browse/%s", s.cfg.BaseURL, key),
	}, nil
}

// Service is the dependency set needed to open and record a ticket.
type Service interface {
	store.FindingStoreReader
	store.FindingStoreWriter
}

// Open creates a ticket for the finding and attaches it. A finding that already has a ticket keeps it.
func Open(ctx context.Context, s Service, c Creator, id string) (*model.Finding, error) {
	f, err := s.GetFinding(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.HasTicket() {
		return f, nil
	}

	t, err := c.Create(ctx, *f)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticket for finding %q: %w", id, err)
	}
	return s.AttachTicket(ctx, id, t)
}
