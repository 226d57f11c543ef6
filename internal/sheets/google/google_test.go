package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	ports "budget/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *gsheet.Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func testRow() ports.Row {
	return ports.Row{
		Expense:         core.NewExpense("fixed", "Rent", decimal.NewFromInt(500)),
		RemainingBudget: decimal.NewFromInt(500),
		RecordedAt:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestClient_Append(t *testing.T) {
	var gotBody gsheet.ValueRange
	var gotPath, gotQuery string
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-1","updates":{"updatedRange":"Budget!A2:E2","updatedRows":1}}`))
	})

	c := NewWithService(svc, "sheet-1", "Budget", nil)
	ref, err := c.Append(context.Background(), testRow())
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	if ref != "Budget!A2:E2" {
		t.Errorf("ref = %q", ref)
	}
	if !strings.Contains(gotPath, "sheet-1") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if !strings.Contains(gotQuery, "valueInputOption=USER_ENTERED") || !strings.Contains(gotQuery, "insertDataOption=INSERT_ROWS") {
		t.Errorf("unexpected query %q", gotQuery)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != 5 {
		t.Fatalf("unexpected values %v", gotBody.Values)
	}
	if gotBody.Values[0][1] != "Rent" || gotBody.Values[0][2] != "Fixed" || gotBody.Values[0][3] != "500" {
		t.Errorf("unexpected row %v", gotBody.Values[0])
	}
}

func TestClient_AppendError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"denied"}}`))
	})

	c := NewWithService(svc, "sheet-1", "", nil)
	if _, err := c.Append(context.Background(), testRow()); err == nil {
		t.Fatal("expected error")
	}
}

func TestClient_AppendWithoutService(t *testing.T) {
	c := &Client{}
	if _, err := c.Append(context.Background(), testRow()); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	if _, err := New(context.Background(), Options{}, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := credentials(Options{}); err == nil {
		t.Fatal("expected error without credentials")
	}

	got, err := credentials(Options{CredentialsJSON: ` {"type":"service_account"} `})
	if err != nil || string(got) != `{"type":"service_account"}` {
		t.Fatalf("inline json: got %q err=%v", got, err)
	}

	file := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(file, []byte(`{"from":"file"}`), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = credentials(Options{CredentialsFile: file})
	if err != nil || string(got) != `{"from":"file"}` {
		t.Fatalf("file: got %q err=%v", got, err)
	}

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", file)
	if _, err := credentials(Options{}); err != nil {
		t.Fatalf("GOOGLE_APPLICATION_CREDENTIALS fallback: %v", err)
	}

	if _, err := credentials(Options{CredentialsFile: "/nonexistent.json"}); err == nil {
		t.Fatal("expected read error")
	}
}
