package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/llm"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// revision chains are linear, but a defensive cap keeps a corrupted chain
// from looping forever
const maxRevisionDepth = 100

// PrototypeService handles prototype generation and sharing
type PrototypeService struct {
	prototypeRepo domain.PrototypeRepository
	workspaceRepo domain.WorkspaceRepository
	llmRouter     *llm.Router
}

// NewPrototypeService creates a new prototype service
func NewPrototypeService(
	prototypeRepo domain.PrototypeRepository,
	workspaceRepo domain.WorkspaceRepository,
	llmRouter *llm.Router,
) *PrototypeService {
	return &PrototypeService{
		prototypeRepo: prototypeRepo,
		workspaceRepo: workspaceRepo,
		llmRouter:     llmRouter,
	}
}

// GenerationResult pairs the stored prototype with generation metadata
type GenerationResult struct {
	Prototype  *domain.Prototype `json:"prototype"`
	Model      string            `json:"model"`
	TokensUsed int               `json:"tokens_used"`
	LatencyMs  int64             `json:"latency_ms"`
}

// Generate produces a new prototype from a prompt. The target workspace
// defaults to the user's personal one and must be one the user belongs to.
func (s *PrototypeService) Generate(ctx context.Context, user *domain.User, input domain.PrototypeCreate) (*GenerationResult, error) {
	workspaceID := user.PersonalWorkspaceID
	if input.WorkspaceID != "" {
		id, err := primitive.ObjectIDFromHex(input.WorkspaceID)
		if err != nil {
			return nil, domain.ErrNotFound
		}
		workspaceID = id
	}

	member, err := s.workspaceRepo.IsMember(ctx, workspaceID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, domain.ErrNotFound
	}

	definition, resp, err := s.generate(ctx, llm.Request{Prompt: input.Prompt}, input.Provider, input.Model)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	prototype := &domain.Prototype{
		ID:            primitive.NewObjectID(),
		CreatorUserID: user.ID,
		WorkspaceID:   workspaceID,
		Prompt:        input.Prompt,
		Definition:    *definition,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.prototypeRepo.Create(ctx, prototype); err != nil {
		return nil, err
	}

	return &GenerationResult{
		Prototype:  prototype,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		LatencyMs:  resp.LatencyMs,
	}, nil
}

// Revise generates a new revision of an existing prototype. The revision
// lives in the same workspace and points back at its predecessor.
func (s *PrototypeService) Revise(ctx context.Context, user *domain.User, base *domain.Prototype, input domain.PrototypeRevise) (*GenerationResult, error) {
	currentJSON, err := json.Marshal(base.Definition)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal current definition: %w", err)
	}

	definition, resp, err := s.generate(ctx, llm.Request{
		Prompt:      input.Prompt,
		CurrentJSON: string(currentJSON),
	}, input.Provider, input.Model)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	prototype := &domain.Prototype{
		ID:            primitive.NewObjectID(),
		CreatorUserID: user.ID,
		WorkspaceID:   base.WorkspaceID,
		PreviousID:    base.ID,
		Prompt:        input.Prompt,
		Definition:    *definition,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.prototypeRepo.Create(ctx, prototype); err != nil {
		return nil, err
	}

	return &GenerationResult{
		Prototype:  prototype,
		Model:      resp.Model,
		TokensUsed: resp.TokensUsed,
		LatencyMs:  resp.LatencyMs,
	}, nil
}

func (s *PrototypeService) generate(ctx context.Context, req llm.Request, providerName, model string) (*domain.FormDefinition, *llm.Response, error) {
	provider, err := s.llmRouter.GetProvider(providerName)
	if err != nil {
		return nil, nil, err
	}

	resp, err := provider.GenerateForm(ctx, req, model)
	if err != nil {
		return nil, nil, fmt.Errorf("generation failed: %w", err)
	}

	var definition domain.FormDefinition
	if err := json.Unmarshal([]byte(resp.RawJSON), &definition); err != nil {
		return nil, nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	if err := definition.Validate(); err != nil {
		return nil, nil, fmt.Errorf("model returned invalid form definition: %w", err)
	}

	return &definition, resp, nil
}

// List retrieves one page of prototypes across the user's workspaces.
// A workspace filter outside the user's membership reads as not found.
func (s *PrototypeService) List(ctx context.Context, userID primitive.ObjectID, filter domain.PrototypeFilter, limit, offset int) (*domain.PrototypePage, error) {
	workspaces, err := s.workspaceRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	workspaceIDs := make([]primitive.ObjectID, len(workspaces))
	for i, ws := range workspaces {
		workspaceIDs[i] = ws.ID
	}

	if filter.WorkspaceID != nil {
		var member bool
		for _, id := range workspaceIDs {
			if id == *filter.WorkspaceID {
				member = true
				break
			}
		}
		if !member {
			return nil, domain.ErrNotFound
		}
	}

	items, err := s.prototypeRepo.ListByWorkspaces(ctx, workspaceIDs, filter, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.prototypeRepo.CountByWorkspaces(ctx, workspaceIDs, filter)
	if err != nil {
		return nil, err
	}

	return &domain.PrototypePage{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// ListSharedWith retrieves prototypes individually shared with the user
func (s *PrototypeService) ListSharedWith(ctx context.Context, userID primitive.ObjectID) ([]domain.Prototype, error) {
	return s.prototypeRepo.ListSharedWith(ctx, userID)
}

// UpdateSharing applies sharing-list and live-link changes to a prototype
func (s *PrototypeService) UpdateSharing(ctx context.Context, prototype *domain.Prototype, input domain.PrototypeShareUpdate) (*domain.Prototype, error) {
	if input.SharedWithUserIDs != nil {
		shared, err := parseMemberIDs(input.SharedWithUserIDs)
		if err != nil {
			return nil, err
		}
		prototype.SharedWithUserIDs = shared
	}
	if input.LivePublic != nil {
		prototype.LivePublic = *input.LivePublic
	}
	if input.LivePassword != nil {
		prototype.LivePassword = *input.LivePassword
	}

	if err := s.prototypeRepo.Update(ctx, prototype); err != nil {
		return nil, err
	}
	return prototype, nil
}

// History walks the revision chain from a prototype back to its origin,
// newest first, starting with the prototype itself
func (s *PrototypeService) History(ctx context.Context, prototype *domain.Prototype) ([]domain.Prototype, error) {
	history := []domain.Prototype{*prototype}

	current := prototype
	for i := 0; i < maxRevisionDepth && !current.PreviousID.IsZero(); i++ {
		previous, err := s.prototypeRepo.GetByID(ctx, current.PreviousID)
		if err != nil {
			return nil, err
		}
		if previous == nil {
			break
		}
		history = append(history, *previous)
		current = previous
	}

	return history, nil
}

// Delete removes a prototype
func (s *PrototypeService) Delete(ctx context.Context, prototype *domain.Prototype) error {
	return s.prototypeRepo.Delete(ctx, prototype.ID)
}
