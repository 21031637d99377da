package service

import (
	"context"
	"testing"

	"github.com/formlab/formgen/internal/domain"
	"github.com/formlab/formgen/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const validFormJSON = `{
	"title": "Apply for a permit",
	"pages": [{
		"title": "Your details",
		"fields": [
			{"name": "full_name", "type": "text", "label": "Full name", "required": true},
			{"name": "contact", "type": "radios", "label": "Contact preference", "options": ["Email", "Phone"]}
		]
	}]
}`

func newGenerateRouter(t *testing.T, rawJSON string) (*llm.Router, *MockProvider) {
	t.Helper()
	provider := new(MockProvider)
	provider.On("Name").Return("mock")
	provider.On("IsConfigured").Return(true)
	if rawJSON != "" {
		provider.On("GenerateForm", mock.Anything, mock.AnythingOfType("llm.Request"), "").
			Return(&llm.Response{RawJSON: rawJSON, Model: "mock-1", TokensUsed: 42}, nil)
	}

	router := llm.NewRouter("mock")
	router.RegisterProvider(provider)
	return router, provider
}

func TestPrototypeService_Generate(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{
		ID:                  primitive.NewObjectID(),
		IsActive:            true,
		PersonalWorkspaceID: primitive.NewObjectID(),
	}

	t.Run("defaults to personal workspace", func(t *testing.T) {
		prototypeRepo := new(MockPrototypeRepository)
		workspaceRepo := new(MockWorkspaceRepository)
		router, _ := newGenerateRouter(t, validFormJSON)
		svc := NewPrototypeService(prototypeRepo, workspaceRepo, router)

		workspaceRepo.On("IsMember", ctx, user.PersonalWorkspaceID, user.ID).Return(true, nil)
		prototypeRepo.On("Create", ctx, mock.AnythingOfType("*domain.Prototype")).Return(nil)

		result, err := svc.Generate(ctx, user, domain.PrototypeCreate{Prompt: "a permit form"})
		assert.NoError(t, err)
		assert.Equal(t, user.PersonalWorkspaceID, result.Prototype.WorkspaceID)
		assert.Equal(t, user.ID, result.Prototype.CreatorUserID)
		assert.Equal(t, "Apply for a permit", result.Prototype.Definition.Title)
		assert.Equal(t, "mock-1", result.Model)
		assert.Equal(t, 42, result.TokensUsed)
	})

	t.Run("foreign workspace reads as not found", func(t *testing.T) {
		prototypeRepo := new(MockPrototypeRepository)
		workspaceRepo := new(MockWorkspaceRepository)
		router, _ := newGenerateRouter(t, "")
		svc := NewPrototypeService(prototypeRepo, workspaceRepo, router)

		foreign := primitive.NewObjectID()
		workspaceRepo.On("IsMember", ctx, foreign, user.ID).Return(false, nil)

		_, err := svc.Generate(ctx, user, domain.PrototypeCreate{
			Prompt:      "a permit form",
			WorkspaceID: foreign.Hex(),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("invalid model output rejected", func(t *testing.T) {
		prototypeRepo := new(MockPrototypeRepository)
		workspaceRepo := new(MockWorkspaceRepository)
		router, _ := newGenerateRouter(t, `{"title": "", "pages": []}`)
		svc := NewPrototypeService(prototypeRepo, workspaceRepo, router)

		workspaceRepo.On("IsMember", ctx, user.PersonalWorkspaceID, user.ID).Return(true, nil)

		_, err := svc.Generate(ctx, user, domain.PrototypeCreate{Prompt: "a permit form"})
		assert.Error(t, err)
		prototypeRepo.AssertNotCalled(t, "Create")
	})
}

func TestPrototypeService_Revise(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: primitive.NewObjectID(), IsActive: true}
	base := &domain.Prototype{
		ID:          primitive.NewObjectID(),
		WorkspaceID: primitive.NewObjectID(),
		Definition:  domain.FormDefinition{Title: "Old title"},
	}

	prototypeRepo := new(MockPrototypeRepository)
	workspaceRepo := new(MockWorkspaceRepository)

	provider := new(MockProvider)
	provider.On("Name").Return("mock")
	provider.On("IsConfigured").Return(true)
	provider.On("GenerateForm", mock.Anything, mock.MatchedBy(func(req llm.Request) bool {
		// The current definition travels with the revision prompt.
		return req.CurrentJSON != ""
	}), "").Return(&llm.Response{RawJSON: validFormJSON, Model: "mock-1"}, nil)

	router := llm.NewRouter("mock")
	router.RegisterProvider(provider)
	svc := NewPrototypeService(prototypeRepo, workspaceRepo, router)

	prototypeRepo.On("Create", ctx, mock.AnythingOfType("*domain.Prototype")).Return(nil)

	result, err := svc.Revise(ctx, user, base, domain.PrototypeRevise{Prompt: "add a phone field"})
	assert.NoError(t, err)
	assert.Equal(t, base.ID, result.Prototype.PreviousID)
	assert.Equal(t, base.WorkspaceID, result.Prototype.WorkspaceID)
	provider.AssertExpectations(t)
}

func TestPrototypeService_List(t *testing.T) {
	ctx := context.Background()
	userID := primitive.NewObjectID()
	wsA := domain.Workspace{ID: primitive.NewObjectID()}
	wsB := domain.Workspace{ID: primitive.NewObjectID()}

	t.Run("pages across member workspaces", func(t *testing.T) {
		prototypeRepo := new(MockPrototypeRepository)
		workspaceRepo := new(MockWorkspaceRepository)
		svc := NewPrototypeService(prototypeRepo, workspaceRepo, llm.NewRouter("mock"))

		ids := []primitive.ObjectID{wsA.ID, wsB.ID}
		workspaceRepo.On("ListByUserID", ctx, userID).Return([]domain.Workspace{wsA, wsB}, nil)
		prototypeRepo.On("ListByWorkspaces", ctx, ids, domain.PrototypeFilter{}, 20, 0).
			Return([]domain.Prototype{{ID: primitive.NewObjectID()}}, nil)
		prototypeRepo.On("CountByWorkspaces", ctx, ids, domain.PrototypeFilter{}).Return(int64(1), nil)

		page, err := svc.List(ctx, userID, domain.PrototypeFilter{}, 20, 0)
		assert.NoError(t, err)
		assert.Len(t, page.Items, 1)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("filter outside membership reads as not found", func(t *testing.T) {
		prototypeRepo := new(MockPrototypeRepository)
		workspaceRepo := new(MockWorkspaceRepository)
		svc := NewPrototypeService(prototypeRepo, workspaceRepo, llm.NewRouter("mock"))

		workspaceRepo.On("ListByUserID", ctx, userID).Return([]domain.Workspace{wsA}, nil)

		foreign := primitive.NewObjectID()
		_, err := svc.List(ctx, userID, domain.PrototypeFilter{WorkspaceID: &foreign}, 20, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPrototypeService_History(t *testing.T) {
	ctx := context.Background()
	prototypeRepo := new(MockPrototypeRepository)
	svc := NewPrototypeService(prototypeRepo, new(MockWorkspaceRepository), llm.NewRouter("mock"))

	origin := &domain.Prototype{ID: primitive.NewObjectID()}
	middle := &domain.Prototype{ID: primitive.NewObjectID(), PreviousID: origin.ID}
	latest := &domain.Prototype{ID: primitive.NewObjectID(), PreviousID: middle.ID}

	prototypeRepo.On("GetByID", ctx, middle.ID).Return(middle, nil)
	prototypeRepo.On("GetByID", ctx, origin.ID).Return(origin, nil)

	history, err := svc.History(ctx, latest)
	assert.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, latest.ID, history[0].ID)
	assert.Equal(t, middle.ID, history[1].ID)
	assert.Equal(t, origin.ID, history[2].ID)
}

func TestPrototypeService_UpdateSharing(t *testing.T) {
	ctx := context.Background()
	prototypeRepo := new(MockPrototypeRepository)
	svc := NewPrototypeService(prototypeRepo, new(MockWorkspaceRepository), llm.NewRouter("mock"))

	prototype := &domain.Prototype{ID: primitive.NewObjectID()}
	shareWith := primitive.NewObjectID()
	public := true
	password := "letmein"

	prototypeRepo.On("Update", ctx, prototype).Return(nil)

	updated, err := svc.UpdateSharing(ctx, prototype, domain.PrototypeShareUpdate{
		SharedWithUserIDs: []string{shareWith.Hex()},
		LivePublic:        &public,
		LivePassword:      &password,
	})
	assert.NoError(t, err)
	assert.Equal(t, []primitive.ObjectID{shareWith}, updated.SharedWithUserIDs)
	assert.True(t, updated.LivePublic)
	assert.Equal(t, "letmein", updated.LivePassword)
}
