package inquiry

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/mogumogu/internal/model"
)

// --- モック定義 ---

type mockQueryRepo struct {
	CreateFunc       func(ctx context.Context, query *model.Query) error
	ListByUserIDFunc func(ctx context.Context, userID string) ([]*model.Query, error)
}

func (m *mockQueryRepo) Create(ctx context.Context, query *model.Query) error {
	return m.CreateFunc(ctx, query)
}

func (m *mockQueryRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Query, error) {
	return m.ListByUserIDFunc(ctx, userID)
}

func TestService_Create_Success(t *testing.T) {
	var created *model.Query
	repo := &mockQueryRepo{
		CreateFunc: func(ctx context.Context, query *model.Query) error {
			created = query
			return nil
		},
	}

	service := NewService(repo)
	query, err := service.Create(context.Background(), "user-1", "配達が遅れています。")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created == nil {
		t.Fatal("expected query to be persisted")
	}
	if query.UserID != "user-1" {
		t.Errorf("user ID = %q, want user-1", query.UserID)
	}
	if query.Body != "配達が遅れています。" {
		t.Errorf("body = %q", query.Body)
	}
	if query.ID == "" {
		t.Error("expected generated query ID")
	}
}

func TestService_Create_StripsHTML(t *testing.T) {
	var created *model.Query
	repo := &mockQueryRepo{
		CreateFunc: func(ctx context.Context, query *model.Query) error {
			created = query
			return nil
		},
	}

	service := NewService(repo)
	_, err := service.Create(context.Background(), "user-1",
		`<script>alert("x")</script>注文について<b>質問</b>です`)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Body != "注文について質問です" {
		t.Errorf("body = %q, want HTML stripped", created.Body)
	}
}

func TestService_Create_EmptyBody(t *testing.T) {
	repo := &mockQueryRepo{
		CreateFunc: func(ctx context.Context, query *model.Query) error {
			t.Error("Create should not be called for empty body")
			return nil
		},
	}
	service := NewService(repo)

	tests := []struct {
		name string
		body string
	}{
		{"empty string", ""},
		{"whitespace only", "   \n\t  "},
		{"tags only", "<p></p><br>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), "user-1", tt.body)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmptyQuery {
				t.Errorf("expected EMPTY_QUERY, got %v", err)
			}
		})
	}
}

func TestService_Create_RepoError(t *testing.T) {
	repo := &mockQueryRepo{
		CreateFunc: func(ctx context.Context, query *model.Query) error {
			return errors.New("db down")
		},
	}
	service := NewService(repo)

	if _, err := service.Create(context.Background(), "user-1", "質問です"); err == nil {
		t.Error("expected error when repository fails")
	}
}

func TestService_ListByUser(t *testing.T) {
	repo := &mockQueryRepo{
		ListByUserIDFunc: func(ctx context.Context, userID string) ([]*model.Query, error) {
			return []*model.Query{{ID: "query-1", UserID: userID}}, nil
		},
	}

	service := NewService(repo)
	queries, err := service.ListByUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(queries) != 1 || queries[0].ID != "query-1" {
		t.Errorf("unexpected queries: %+v", queries)
	}
}
