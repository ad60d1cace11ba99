package memory

import (
	"github.com/m-mizutani/hazel/pkg/adapter"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/repository"
)

// UseCase provides the memory service operations. It owns the record
// lifecycle and holds no state of its own beyond its collaborators;
// every external surface (MCP tools, CLI, browse shell) goes through
// this type.
type UseCase struct {
	repo     repository.Repository
	embedder adapter.Embedder
	cfg      *config.Resolver
}

// New creates a new memory UseCase instance
func New(repo repository.Repository, embedder adapter.Embedder, cfg *config.Resolver) *UseCase {
	return &UseCase{
		repo:     repo,
		embedder: embedder,
		cfg:      cfg,
	}
}
