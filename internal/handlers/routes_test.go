package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/arzan03/FitnexFitness/internal/db"
	"github.com/arzan03/FitnexFitness/internal/db/dbtest"
	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeIntents struct {
	amount int64
	err    error
}

func (f *fakeIntents) CreateIntent(ctx context.Context, amount int64, currency string) (string, error) {
	f.amount = amount
	if f.err != nil {
		return "", f.err
	}
	return "pi_secret", nil
}

type fakeObjects struct {
	stored []string
}

func (f *fakeObjects) Put(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	f.stored = append(f.stored, objectName)
	return "http://media/fitnex-media/" + objectName, nil
}

type fixture struct {
	app      *fiber.App
	store    *dbtest.Store
	sessions *services.SessionService
	intents  *fakeIntents
	objects  *fakeObjects
}

func newFixture(t *testing.T, production bool) *fixture {
	t.Helper()
	store := dbtest.NewStore()
	f := &fixture{
		store:    store,
		sessions: services.NewSessionService("test-secret"),
		intents:  &fakeIntents{},
		objects:  &fakeObjects{},
	}
	h := New(Deps{
		Resources:  services.NewResourceService(store),
		Users:      services.NewUserService(store),
		Sessions:   f.sessions,
		Payments:   services.NewPaymentService(store, f.intents),
		Media:      services.NewMediaService(f.objects),
		Health:     store,
		Production: production,
	})
	f.app = NewApp(h, []string{"http://localhost:5173"})
	return f
}

func (f *fixture) token(t *testing.T, email string) string {
	t.Helper()
	token, err := f.sessions.Issue(map[string]interface{}{"email": email})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	return token
}

func (f *fixture) admin(t *testing.T) string {
	f.store.Coll(db.UsersCollection).Seed(bson.M{"email": "boss@example.com", "role": "admin"})
	return f.token(t, "boss@example.com")
}

func (f *fixture) do(t *testing.T, method, path, body, token string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Cookie", services.SessionCookie+"="+token)
	}
	return f.send(t, req)
}

func (f *fixture) send(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := f.app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test(%s %s) error = %v", req.Method, req.URL.Path, err)
	}
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b)
}

func TestHomeAndHealth(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "GET", "/", "", "")
	if resp.StatusCode != 200 || body != "Hello Fitnex-Fitness!" {
		t.Errorf("GET / = %d %q", resp.StatusCode, body)
	}

	resp, _ = f.do(t, "GET", "/healthz", "", "")
	if resp.StatusCode != 200 {
		t.Errorf("GET /healthz = %d, want 200", resp.StatusCode)
	}

	f.store.PingErr = errors.New("no primary")
	resp, _ = f.do(t, "GET", "/healthz", "", "")
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("GET /healthz with store down = %d, want 503", resp.StatusCode)
	}
}

func TestSessionGate(t *testing.T) {
	f := newFixture(t, false)
	valid := f.token(t, "jane@example.com")
	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"no cookie", "", fiber.StatusUnauthorized},
		{"tampered", tampered, fiber.StatusUnauthorized},
		{"valid", valid, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := f.do(t, "POST", "/forums", `{"title":"Leg day","email":"jane@example.com"}`, tt.token)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d (body %s)", resp.StatusCode, tt.status, body)
			}
			if tt.status == fiber.StatusUnauthorized && !strings.Contains(body, `"error"`) {
				t.Errorf("body = %s, want an error object", body)
			}
		})
	}

	if n := len(f.store.Coll(db.ForumsCollection).Docs()); n != 1 {
		t.Errorf("forum posts stored = %d, want 1", n)
	}
}

func TestIssuedCookieCarriesClaims(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "POST", "/jwt", `{"email":"jane@example.com"}`, "")
	if resp.StatusCode != 200 || !strings.Contains(body, `"success":true`) {
		t.Fatalf("POST /jwt = %d %s", resp.StatusCode, body)
	}

	var token string
	for _, c := range resp.Cookies() {
		if c.Name == services.SessionCookie {
			token = c.Value
			if !c.HttpOnly {
				t.Error("session cookie is not HttpOnly")
			}
			if c.SameSite != http.SameSiteStrictMode {
				t.Errorf("SameSite = %v, want Strict in development", c.SameSite)
			}
		}
	}
	if token == "" {
		t.Fatalf("no %s cookie in %v", services.SessionCookie, resp.Header.Values("Set-Cookie"))
	}

	// The history route only answers for the email inside the session.
	resp, body = f.do(t, "GET", "/payments/jane@example.com", "", token)
	if resp.StatusCode != 200 || body != "[]" {
		t.Errorf("own history = %d %s", resp.StatusCode, body)
	}
	resp, _ = f.do(t, "GET", "/payments/other@example.com", "", token)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("foreign history = %d, want 403", resp.StatusCode)
	}
}

func TestProductionCookie(t *testing.T) {
	f := newFixture(t, true)

	resp, _ := f.do(t, "POST", "/jwt", `{"email":"jane@example.com"}`, "")
	header := strings.ToLower(strings.Join(resp.Header.Values("Set-Cookie"), ";"))
	if !strings.Contains(header, "samesite=none") || !strings.Contains(header, "secure") {
		t.Errorf("Set-Cookie = %q, want SameSite=None and Secure", header)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "GET", "/logout", "", "")
	if resp.StatusCode != 200 || !strings.Contains(body, `"success":true`) {
		t.Fatalf("GET /logout = %d %s", resp.StatusCode, body)
	}
	header := strings.ToLower(resp.Header.Get("Set-Cookie"))
	if !strings.HasPrefix(header, "token=;") || !strings.Contains(header, "1970") {
		t.Errorf("Set-Cookie = %q, want an expired empty token", header)
	}
}

func TestSaveUserIsIdempotent(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "PUT", "/users/jane@example.com", `{"displayName":"Jane","photoURL":"a.png"}`, "")
	if resp.StatusCode != 200 || !strings.Contains(body, `"upsertedCount":1`) {
		t.Fatalf("first PUT = %d %s", resp.StatusCode, body)
	}

	resp, body = f.do(t, "PUT", "/user/jane%40example.com", `{"displayName":"Impostor"}`, "")
	if resp.StatusCode != 200 {
		t.Fatalf("second PUT = %d %s", resp.StatusCode, body)
	}
	var user map[string]interface{}
	if err := json.Unmarshal([]byte(body), &user); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if user["displayName"] != "Jane" || user["email"] != "jane@example.com" {
		t.Errorf("second PUT returned %v, want the first record", user)
	}

	resp, _ = f.do(t, "PUT", "/users/undefined", `{}`, "")
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("PUT with bad email = %d, want 400", resp.StatusCode)
	}
}

func TestGetUser(t *testing.T) {
	f := newFixture(t, false)
	f.store.Coll(db.UsersCollection).Seed(bson.M{"email": "jane@example.com", "role": "trainer"})

	_, body := f.do(t, "GET", "/user/jane@example.com", "", "")
	if !strings.Contains(body, `"role":"trainer"`) {
		t.Errorf("GET /user/jane = %s", body)
	}

	resp, body := f.do(t, "GET", "/user/ghost@example.com", "", "")
	if resp.StatusCode != 200 || body != "null" {
		t.Errorf("GET /user/ghost = %d %q, want 200 null", resp.StatusCode, body)
	}
}

func TestAdminRoutes(t *testing.T) {
	f := newFixture(t, false)
	admin := f.admin(t)
	member := f.token(t, "jane@example.com")
	f.store.Coll(db.UsersCollection).Seed(bson.M{"email": "jane@example.com", "displayName": "Jane"})

	resp, _ := f.do(t, "PATCH", "/user/trainer/jane@example.com", "", member)
	if resp.StatusCode != fiber.StatusForbidden {
		t.Errorf("member promote = %d, want 403", resp.StatusCode)
	}

	resp, body := f.do(t, "PATCH", "/user/trainer/jane@example.com", "", admin)
	if resp.StatusCode != 200 || !strings.Contains(body, `"modifiedCount":1`) {
		t.Fatalf("admin promote = %d %s", resp.StatusCode, body)
	}
	_, body = f.do(t, "GET", "/user/jane@example.com", "", "")
	if !strings.Contains(body, `"role":"trainer"`) || !strings.Contains(body, `"payment":"pending"`) || !strings.Contains(body, `"displayName":"Jane"`) {
		t.Errorf("promoted user = %s", body)
	}

	resp, body = f.do(t, "GET", "/user", "", admin)
	if resp.StatusCode != 200 || strings.Count(body, `"email"`) != 2 {
		t.Errorf("GET /user = %d %s", resp.StatusCode, body)
	}
}

func TestListEmptyCollection(t *testing.T) {
	f := newFixture(t, false)
	for _, path := range []string{"/featured", "/testimonials", "/trainers", "/classes", "/forums", "/challenge"} {
		resp, body := f.do(t, "GET", path, "", "")
		if resp.StatusCode != 200 || body != "[]" {
			t.Errorf("GET %s = %d %q, want 200 []", path, resp.StatusCode, body)
		}
	}
}

func TestDeleteNonexistentForumPost(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")

	resp, body := f.do(t, "DELETE", "/forums/"+primitive.NewObjectID().Hex(), "", token)
	if resp.StatusCode != 200 || !strings.Contains(body, `"deletedCount":0`) {
		t.Errorf("DELETE missing forum = %d %s", resp.StatusCode, body)
	}

	resp, _ = f.do(t, "DELETE", "/forums/xyz", "", token)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("DELETE malformed id = %d, want 400", resp.StatusCode)
	}
}

func TestNewsletterSubscribe(t *testing.T) {
	f := newFixture(t, false)

	for i := 0; i < 2; i++ {
		resp, body := f.do(t, "POST", "/newsletters", `{"name":"Jane","email":"jane@example.com"}`, "")
		if resp.StatusCode != 200 || !strings.Contains(body, `"insertedId"`) {
			t.Fatalf("POST /newsletters = %d %s", resp.StatusCode, body)
		}
	}
	if n := len(f.store.Coll(db.SubscribersCollection).Docs()); n != 2 {
		t.Errorf("subscribers = %d, want 2", n)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")

	resp, body := f.do(t, "POST", "/create-payment-intent", `{"price": 29.99}`, token)
	if resp.StatusCode != 200 || body != `{"clientSecret":"pi_secret"}` {
		t.Fatalf("POST /create-payment-intent = %d %s", resp.StatusCode, body)
	}
	if f.intents.amount != 2999 {
		t.Errorf("intent amount = %d, want 2999", f.intents.amount)
	}

	resp, _ = f.do(t, "POST", "/create-payment-intent", `{}`, token)
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("missing price = %d, want 400", resp.StatusCode)
	}

	f.intents.err = errors.New("api down")
	resp, _ = f.do(t, "POST", "/create-payment-intent", `{"price": 5}`, token)
	if resp.StatusCode != fiber.StatusBadGateway {
		t.Errorf("provider failure = %d, want 502", resp.StatusCode)
	}
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")
	cart := f.store.Coll(db.PaymentsCollection).Seed(bson.M{"item": "class"})

	body := `{"email":"jane@example.com","price":29.99,"transactionId":"pi_1","cartIds":["` + cart[0].Hex() + `"]}`
	resp, out := f.do(t, "POST", "/payments", body, token)
	if resp.StatusCode != 200 || !strings.Contains(out, `"deletedCount":1`) {
		t.Fatalf("POST /payments = %d %s", resp.StatusCode, out)
	}

	docs := f.store.Coll(db.PaymentsCollection).Docs()
	if len(docs) != 1 || docs[0]["transactionId"] != "pi_1" {
		t.Errorf("payments = %v", docs)
	}
}

func TestUploadImage(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="me.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, _ := w.CreatePart(h)
	part.Write([]byte("jpegdata"))
	w.Close()

	req := httptest.NewRequest("POST", "/uploads", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", services.SessionCookie+"="+token)

	resp, body := f.send(t, req)
	if resp.StatusCode != 200 || !strings.Contains(body, "http://media/fitnex-media/") {
		t.Fatalf("POST /uploads = %d %s", resp.StatusCode, body)
	}
	if len(f.objects.stored) != 1 || !strings.HasSuffix(f.objects.stored[0], ".jpg") {
		t.Errorf("stored = %v", f.objects.stored)
	}
}

func TestCreateStoresPayloadAsSent(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")

	tests := []struct {
		path       string
		token      string
		body       string
		collection string
		field      string
		want       interface{}
	}{
		{"/newsletters", "", `{"name":"Jane","email":"jane@example.com","source":"footer"}`, db.SubscribersCollection, "source", "footer"},
		{"/trainers", token, `{"name":"Sam","age":"30"}`, db.TrainersCollection, "age", "30"},
		{"/classes", token, `{"name":"HIIT","duration":45}`, db.ClassesCollection, "duration", float64(45)},
		{"/forums", token, `{"title":"Leg day","mood":"sore"}`, db.ForumsCollection, "mood", "sore"},
		{"/challenge", token, `{"title":"Plank","days":30}`, db.ChallengesCollection, "days", float64(30)},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := f.do(t, "POST", tt.path, tt.body, tt.token)
			if resp.StatusCode != 200 {
				t.Fatalf("POST %s = %d %s", tt.path, resp.StatusCode, body)
			}
			docs := f.store.Coll(tt.collection).Docs()
			if len(docs) != 1 {
				t.Fatalf("stored = %v", docs)
			}
			got := docs[0][tt.field]
			if n, ok := got.(int32); ok {
				got = float64(n)
			}
			if got != tt.want {
				t.Errorf("%s = %#v, want %#v", tt.field, docs[0][tt.field], tt.want)
			}
			if _, ok := docs[0]["timestamp"]; ok {
				t.Errorf("timestamp added to %v", docs[0])
			}
		})
	}
}

func TestSaveUserKeepsProfileFields(t *testing.T) {
	f := newFixture(t, false)

	resp, body := f.do(t, "PUT", "/users/jane@example.com", `{"displayName":"Jane","gender":"f","phone":"555"}`, "")
	if resp.StatusCode != 200 {
		t.Fatalf("PUT = %d %s", resp.StatusCode, body)
	}
	doc := f.store.Coll(db.UsersCollection).Docs()[0]
	if doc["gender"] != "f" || doc["phone"] != "555" || doc["email"] != "jane@example.com" {
		t.Errorf("user = %v", doc)
	}
	if _, ok := doc["timestamp"]; !ok {
		t.Errorf("user has no timestamp: %v", doc)
	}
}

func TestUpdateUser(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")
	ids := f.store.Coll(db.UsersCollection).Seed(
		bson.M{"email": "jane@example.com"},
		bson.M{"email": "taken@example.com"},
	)
	path := "/user/" + ids[0].Hex()

	resp, body := f.do(t, "PATCH", path, `{"displayName":"J","age":31}`, token)
	if resp.StatusCode != 200 || !strings.Contains(body, `"modifiedCount":1`) {
		t.Errorf("PATCH = %d %s", resp.StatusCode, body)
	}

	for _, bad := range []string{`{"email":"taken@example.com"}`, `{"email":"not-an-address"}`, `{"email":7}`, `{}`} {
		resp, body = f.do(t, "PATCH", path, bad, token)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("PATCH %s = %d %s, want 400", bad, resp.StatusCode, body)
		}
	}
}

func TestRecordPaymentStringPrice(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")

	resp, body := f.do(t, "POST", "/payments", `{"email":"jane@example.com","price":"29.99","trainerId":"t1"}`, token)
	if resp.StatusCode != 200 {
		t.Fatalf("POST /payments = %d %s", resp.StatusCode, body)
	}
	doc := f.store.Coll(db.PaymentsCollection).Docs()[0]
	if doc["price"] != "29.99" || doc["trainerId"] != "t1" {
		t.Errorf("payment = %v", doc)
	}
}

func TestCreatePaymentIntentRejectsNonDecimal(t *testing.T) {
	f := newFixture(t, false)
	token := f.token(t, "jane@example.com")

	for _, price := range []string{`"1/3"`, `"0x10"`, `"1_000"`} {
		resp, _ := f.do(t, "POST", "/create-payment-intent", `{"price":`+price+`}`, token)
		if resp.StatusCode != fiber.StatusBadRequest {
			t.Errorf("price %s = %d, want 400", price, resp.StatusCode)
		}
	}
	if f.intents.amount != 0 {
		t.Errorf("intent created for amount %d", f.intents.amount)
	}
}

// The admin tier trusts whichever email the session claims, so it is only as
// strong as the issuance of /jwt cookies.
func TestAdminFollowsSessionEmailClaim(t *testing.T) {
	f := newFixture(t, false)
	f.admin(t)

	resp, _ := f.do(t, "POST", "/jwt", `{"email":"boss@example.com"}`, "")
	var token string
	for _, c := range resp.Cookies() {
		if c.Name == services.SessionCookie {
			token = c.Value
		}
	}

	resp, body := f.do(t, "GET", "/newsletters", "", token)
	if resp.StatusCode != 200 || body != "[]" {
		t.Errorf("GET /newsletters = %d %s", resp.StatusCode, body)
	}
}
