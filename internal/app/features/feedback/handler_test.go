package feedback_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/noticeboard/internal/app/features/feedback"
	"github.com/dalemusser/noticeboard/internal/app/notify"
	"github.com/dalemusser/noticeboard/internal/app/system/ratelimit"
	"github.com/dalemusser/noticeboard/internal/domain/models"
	"github.com/dalemusser/noticeboard/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (http.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	svc := notify.New(notify.MongoStores(db), notify.Config{}, zap.NewNop())
	return feedback.Routes(feedback.NewHandler(svc, zap.NewNop()), nil), db
}

func TestSubmit_StoresAdminMessage(t *testing.T) {
	router, db := newRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{
		"kind":  "bug",
		"title": "Login <i>loops</i>",
		"body":  "After sign in the page reloads forever.",
	})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.AsIdentity(req, testutil.MemberIdentity("m1")))
	rec.AssertStatus(t, http.StatusCreated)

	var m models.Message
	if err := db.Collection("messages").FindOne(ctx, bson.M{}).Decode(&m); err != nil {
		t.Fatalf("FindOne failed: %v", err)
	}
	if m.Type != models.MessageAdmin {
		t.Errorf("type: got %q, want %q", m.Type, models.MessageAdmin)
	}
	if m.Title != "Bug report: Login loops" {
		t.Errorf("title: got %q", m.Title)
	}
	if len(m.Recipients) != 0 {
		t.Errorf("recipients: got %d, want 0", len(m.Recipients))
	}
	if m.CreatedBy.Identity != "m1" {
		t.Errorf("created_by: got %+v", m.CreatedBy)
	}
}

func TestSubmit_Rejects(t *testing.T) {
	router, _ := newRouter(t)

	anon := testutil.NewRecorder()
	router.ServeHTTP(anon, testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"kind": "bug", "body": "x"}))
	anon.AssertStatus(t, http.StatusUnauthorized)

	cases := map[string]map[string]string{
		"unknown kind": {"kind": "praise", "body": "nice"},
		"blank body":   {"kind": "feature", "title": "Dark mode", "body": " "},
	}
	for name, body := range cases {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.AsIdentity(testutil.NewJSONRequest(t, http.MethodPost, "/", body), testutil.MemberIdentity("m1")))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status got %d, want %d", name, rec.Code, http.StatusBadRequest)
		}
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.AsIdentity(httptest.NewRequest(http.MethodPost, "/", nil), testutil.MemberIdentity("m1")))
	rec.AssertStatus(t, http.StatusBadRequest)
}

func TestSubmit_RateLimited(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := notify.New(notify.MongoStores(db), notify.Config{}, zap.NewNop())
	router := feedback.Routes(feedback.NewHandler(svc, zap.NewNop()), ratelimit.New(1, time.Minute))

	submit := func(user string) *testutil.ResponseRecorder {
		req := testutil.NewJSONRequest(t, http.MethodPost, "/", map[string]string{"kind": "feature", "body": "Dark mode"})
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.AsIdentity(req, testutil.MemberIdentity(user)))
		return rec
	}

	submit("m1").AssertStatus(t, http.StatusCreated)
	submit("m1").AssertStatus(t, http.StatusTooManyRequests)
	submit("m2").AssertStatus(t, http.StatusCreated)
}
