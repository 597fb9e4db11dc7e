package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zeromicro/go-zero/rest"
	"github.com/zeromicro/go-zero/rest/pathvar"

	"github.com/shehrozeikram/ERP-sub009/internal/auth/token"
	"github.com/shehrozeikram/ERP-sub009/internal/cache"
	"github.com/shehrozeikram/ERP-sub009/internal/modules"
	"github.com/shehrozeikram/ERP-sub009/internal/tasks"
	"github.com/shehrozeikram/ERP-sub009/internal/workflow"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/config"
	"github.com/shehrozeikram/ERP-sub009/services/workflow/internal/svc"
)

const testSecret = "handler-test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	ctx    *svc.ServiceContext
	routes []rest.Route
	tokens *token.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	var c config.Config
	c.Auth.JWTSecret = testSecret
	c.Workflow.Store = svc.StoreMemory
	ctx, err := svc.Build(c)
	if err != nil {
		t.Fatalf("build service context: %v", err)
	}
	return &testServer{t: t, ctx: ctx, routes: Routes(ctx), tokens: token.NewManager(testSecret)}
}

func (s *testServer) bearer(id, email, role string) string {
	s.t.Helper()
	tok, err := s.tokens.Sign(id, email, role, "", 0)
	if err != nil {
		s.t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

func (s *testServer) do(method, path, authz, body string, vars map[string]string) (int, envelope) {
	s.t.Helper()
	var h http.HandlerFunc
	pattern := path
	if i := strings.IndexByte(path, '?'); i >= 0 {
		pattern = path[:i]
	}
	for _, rt := range s.routes {
		if rt.Method == method && routeMatches(rt.Path, pattern) {
			h = rt.Handler
			break
		}
	}
	if h == nil {
		s.t.Fatalf("no route for %s %s", method, path)
	}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	if vars != nil {
		req = pathvar.WithVars(req, vars)
	}
	w := httptest.NewRecorder()
	h(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

func routeMatches(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")
	if len(ps) != len(xs) {
		return false
	}
	for i := range ps {
		if !strings.HasPrefix(ps[i], ":") && ps[i] != xs[i] {
			return false
		}
	}
	return true
}

func (s *testServer) put(module string, status workflow.Status, creator string) string {
	s.t.Helper()
	st, ok := s.ctx.Stores[module]
	if !ok {
		s.t.Fatalf("no memory store for %s", module)
	}
	return st.Put(&modules.Document{
		Status:    status,
		CreatedBy: &workflow.Actor{ID: creator},
		Fields:    map[string]any{"grand_total": "PKR 12,000"},
	}).ID
}

func docPath(module, id, action string) (string, map[string]string) {
	return "/api/admin/documents/" + module + "/" + id + "/" + action, map[string]string{"module": module, "id": id}
}

func TestTasksRequiresAuth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/api/admin/dashboard/tasks", "", "", nil)
	if code != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401, got %d %+v", code, env)
	}
	code, _ = s.do(http.MethodGet, "/api/admin/dashboard/tasks", "Bearer not-a-token", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", code)
	}
}

func TestTasksAndStatsForCreator(t *testing.T) {
	s := newTestServer(t)
	s.put("payment_settlement", workflow.StatusReturnedFromAudit, "u-clerk")
	s.put("utility_bills_management", workflow.StatusReturnedFromAudit, "u-clerk")
	s.put("payment_settlement", workflow.StatusDraft, "u-clerk")
	s.put("payment_settlement", workflow.StatusReturnedFromAudit, "someone-else")
	clerk := s.bearer("u-clerk", "clerk@tovus.net", "employee")

	code, env := s.do(http.MethodGet, "/api/admin/dashboard/tasks", clerk, "", nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("tasks: %d %+v", code, env)
	}
	var list struct {
		TotalTasks  int            `json:"totalTasks"`
		BySubmodule map[string]any `json:"bySubmodule"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if list.TotalTasks != 2 || len(list.BySubmodule) != 2 {
		t.Fatalf("creator should see own returned documents: %+v", list)
	}

	code, env = s.do(http.MethodGet, "/api/admin/dashboard/stats", clerk, "", nil)
	if code != http.StatusOK {
		t.Fatalf("stats: %d %+v", code, env)
	}
	var st struct {
		TotalTasks   int64 `json:"totalTasks"`
		PendingTasks int64 `json:"pendingTasks"`
	}
	if err := json.Unmarshal(env.Data, &st); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if st.TotalTasks != 2 || st.PendingTasks != 0 {
		t.Fatalf("stats: %+v", st)
	}
}

func TestAuditorQueueWithFilter(t *testing.T) {
	s := newTestServer(t)
	s.put("payment_settlement", workflow.StatusSendToAudit, "u1")
	s.put("rental_agreements", workflow.StatusSendToFinance, "u1")
	auditor := s.bearer("u-aud", "aud@tovus.net", "auditor")

	// the filter only narrows elevated callers
	code, env := s.do(http.MethodGet, "/api/admin/dashboard/tasks?workflowStatus=Send+to+Finance", auditor, "", nil)
	if code != http.StatusOK {
		t.Fatalf("tasks: %d %+v", code, env)
	}
	var list struct {
		Tasks []struct {
			WorkflowStatus     string `json:"workflowStatus"`
			UserAssignedStatus string `json:"userAssignedStatus"`
		} `json:"tasks"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Tasks) != 1 || list.Tasks[0].WorkflowStatus != string(workflow.StatusSendToAudit) ||
		list.Tasks[0].UserAssignedStatus != string(workflow.StatusSendToAudit) {
		t.Fatalf("auditor queue: %+v", list.Tasks)
	}

	admin := s.bearer("u-adm", "boss@tovus.net", "admin")
	code, env = s.do(http.MethodGet, "/api/admin/dashboard/tasks?workflowStatus=Send+to+Finance", admin, "", nil)
	if code != http.StatusOK {
		t.Fatalf("admin tasks: %d", code)
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Tasks) != 1 || list.Tasks[0].WorkflowStatus != string(workflow.StatusSendToFinance) {
		t.Fatalf("admin filtered queue: %+v", list.Tasks)
	}
}

func TestSubmitThenApprove(t *testing.T) {
	s := newTestServer(t)
	id := s.put("payment_settlement", "", "u-clerk")
	clerk := s.bearer("u-clerk", "clerk@tovus.net", "employee")
	auditor := s.bearer("u-aud", "aud@tovus.net", "auditor")

	path, vars := docPath("payment_settlement", id, "workflow-status")
	code, env := s.do(http.MethodPatch, path, clerk, `{"workflowStatus":"Send to Audit","comments":"ready"}`, vars)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("submit: %d %+v", code, env)
	}

	// employees may not approve
	path, vars = docPath("payment_settlement", id, "approve")
	if code, _ := s.do(http.MethodPatch, path, clerk, `{}`, vars); code != http.StatusForbidden {
		t.Fatalf("employee approve: want 403, got %d", code)
	}

	code, env = s.do(http.MethodPatch, path, auditor, `{"digitalSignature":"AUD-1"}`, vars)
	if code != http.StatusOK {
		t.Fatalf("approve: %d %+v", code, env)
	}
	var doc struct {
		WorkflowStatus  string `json:"workflowStatus"`
		Status          string `json:"status"`
		WorkflowHistory []struct {
			FromStatus string `json:"fromStatus"`
			ToStatus   string `json:"toStatus"`
			Comments   string `json:"comments"`
		} `json:"workflowHistory"`
	}
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.WorkflowStatus != "Approved (from Send to Audit)" || doc.Status != "Approved" || len(doc.WorkflowHistory) != 2 {
		t.Fatalf("approved doc: %+v", doc)
	}
	if got := doc.WorkflowHistory[1].Comments; got != "Document approved with digital signature: AUD-1" {
		t.Fatalf("approve comment: %q", got)
	}

	// already resolved
	admin := s.bearer("u-adm", "boss@tovus.net", "admin")
	if code, _ := s.do(http.MethodPatch, path, admin, `{}`, vars); code != http.StatusBadRequest {
		t.Fatalf("re-approve: want 400, got %d", code)
	}
}

func TestWorkflowErrors(t *testing.T) {
	s := newTestServer(t)
	admin := s.bearer("u-adm", "boss@tovus.net", "admin")
	auditor := s.bearer("u-aud", "aud@tovus.net", "auditor")
	finance := s.put("payment_settlement", workflow.StatusSendToFinance, "u1")

	path, vars := docPath("payment_settlement", finance, "workflow-status")
	if code, env := s.do(http.MethodPatch, path, admin, `{"workflowStatus":"Send to Audit"}`, vars); code != http.StatusBadRequest || env.Success {
		t.Fatalf("invalid transition: %d %+v", code, env)
	}
	if code, _ := s.do(http.MethodPatch, path, admin, `{"workflowStatus":"Paid"}`, vars); code != http.StatusBadRequest {
		t.Fatalf("unknown status: %d", code)
	}
	if code, _ := s.do(http.MethodPatch, path, auditor, `{"workflowStatus":"Send to CEO Office"}`, vars); code != http.StatusForbidden {
		t.Fatalf("auditor on finance doc: %d", code)
	}

	path, vars = docPath("inventory", finance, "workflow-status")
	if code, _ := s.do(http.MethodPatch, path, admin, `{"workflowStatus":"Draft"}`, vars); code != http.StatusNotFound {
		t.Fatalf("unknown module: %d", code)
	}
	path, vars = docPath("payment_settlement", "missing", "approve")
	if code, _ := s.do(http.MethodPatch, path, admin, `{}`, vars); code != http.StatusNotFound {
		t.Fatalf("missing document: %d", code)
	}

	ceo := s.put("payment_settlement", workflow.StatusForwardedToCEO, "u1")
	path, vars = docPath("payment_settlement", ceo, "reject")
	if code, env := s.do(http.MethodPatch, path, admin, `{"comments":""}`, vars); code != http.StatusBadRequest || !strings.Contains(env.Message, "comments") {
		t.Fatalf("reject without comments: %d %+v", code, env)
	}
	body := `{"comments":"over budget","observations":[{"observation":"no quote","severity":"high"}]}`
	if code, env := s.do(http.MethodPatch, path, admin, body, vars); code != http.StatusOK {
		t.Fatalf("reject: %d %+v", code, env)
	}
}

// epochCache bumps its generation on Invalidate and only serves entries
// stored under the current one.
type epochCache struct {
	gen     cache.Generation
	entries map[string]cache.Generation
	stats   map[string]*tasks.Stats
}

func (c *epochCache) Get(_ context.Context, scope string) (*tasks.Stats, cache.Generation, bool) {
	if g, ok := c.entries[scope]; ok && g == c.gen {
		return c.stats[scope], c.gen, true
	}
	return nil, c.gen, false
}

func (c *epochCache) Set(_ context.Context, scope string, gen cache.Generation, st *tasks.Stats) {
	c.entries[scope] = gen
	c.stats[scope] = st
}

func (c *epochCache) Invalidate(context.Context) error { c.gen++; return nil }

func TestStatsStoredUnderLookupGeneration(t *testing.T) {
	s := newTestServer(t)
	ec := &epochCache{gen: 3, entries: map[string]cache.Generation{}, stats: map[string]*tasks.Stats{}}
	s.ctx.StatsCache = ec
	s.put("payment_settlement", workflow.StatusSendToAudit, "u1")
	admin := s.bearer("u-adm", "boss@tovus.net", "admin")

	if code, env := s.do(http.MethodGet, "/api/admin/dashboard/stats", admin, "", nil); code != http.StatusOK {
		t.Fatalf("stats: %d %+v", code, env)
	}
	if g, ok := ec.entries["elevated:*"]; !ok || g != 3 {
		t.Fatalf("stats stored under generation %d (present %v), want 3", g, ok)
	}
	_ = ec.Invalidate(context.Background())
	if _, _, hit := ec.Get(context.Background(), "elevated:*"); hit {
		t.Fatalf("entry from the previous generation was served")
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	code, _ := s.do(http.MethodGet, "/healthz", "", "", nil)
	if code != http.StatusOK {
		t.Fatalf("healthz: %d", code)
	}
}
