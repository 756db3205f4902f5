package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"trend-watch/config"
	"trend-watch/models"

	"github.com/golang-jwt/jwt/v5"
)

// mockRepo implements RepositoryInterface for testing
type mockRepo struct {
	users      map[string]*models.User
	nextUserID int64
	watchlist  map[int64][]models.WatchlistEntry

	cachedSeries map[string]*models.Series
	cacheWrites  int

	createUserErr error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:        make(map[string]*models.User),
		nextUserID:   1,
		watchlist:    make(map[int64][]models.WatchlistEntry),
		cachedSeries: make(map[string]*models.Series),
	}
}

func (m *mockRepo) Close()                           {}
func (m *mockRepo) Health(ctx context.Context) error { return nil }

func (m *mockRepo) CreateUser(ctx context.Context, user *models.User) error {
	if m.createUserErr != nil {
		return m.createUserErr
	}
	if _, exists := m.users[user.Username]; exists {
		return fmt.Errorf("duplicate: %w", models.ErrConflict)
	}
	user.ID = m.nextUserID
	m.nextUserID++
	m.users[user.Username] = user
	return nil
}

func (m *mockRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.users[username], nil
}

func (m *mockRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockRepo) AddToWatchlist(ctx context.Context, userID int64, ticker string) error {
	for _, e := range m.watchlist[userID] {
		if e.Ticker == ticker {
			return nil
		}
	}
	m.watchlist[userID] = append(m.watchlist[userID], models.WatchlistEntry{UserID: userID, Ticker: ticker})
	return nil
}

func (m *mockRepo) RemoveFromWatchlist(ctx context.Context, userID int64, ticker string) error {
	entries := m.watchlist[userID]
	for i, e := range entries {
		if e.Ticker == ticker {
			m.watchlist[userID] = append(entries[:i], entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockRepo) GetWatchlist(ctx context.Context, userID int64) ([]models.WatchlistEntry, error) {
	return m.watchlist[userID], nil
}

func (m *mockRepo) GetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe) (*models.Series, error) {
	return m.cachedSeries[ticker+"|"+string(tf)], nil
}

func (m *mockRepo) SetCachedSeries(ctx context.Context, ticker string, tf models.Timeframe, series *models.Series, ttl time.Duration) error {
	m.cacheWrites++
	m.cachedSeries[ticker+"|"+string(tf)] = series
	return nil
}

// mockProvider implements services.MarketDataProvider for testing
type mockProvider struct {
	points []models.PricePoint
	quote  *models.Quote
	err    error
	calls  int
}

func (m *mockProvider) GetDailySeries(ctx context.Context, ticker string, start, end time.Time) ([]models.PricePoint, error) {
	m.calls++
	return m.points, m.err
}

func (m *mockProvider) GetQuote(ctx context.Context, ticker string) (*models.Quote, error) {
	return m.quote, m.err
}

func (m *mockProvider) Name() string { return "mock" }

// mockSessions implements SessionStore for testing
type mockSessions struct {
	sessions map[string]int64
	nextID   int
	revoked  []string
}

func newMockSessions() *mockSessions {
	return &mockSessions{sessions: make(map[string]int64)}
}

func (m *mockSessions) Create(ctx context.Context, userID int64) (string, error) {
	m.nextID++
	id := fmt.Sprintf("session-%d", m.nextID)
	m.sessions[id] = userID
	return id, nil
}

func (m *mockSessions) Validate(ctx context.Context, id string) (int64, error) {
	userID, ok := m.sessions[id]
	if !ok {
		return 0, models.ErrSessionInvalid
	}
	return userID, nil
}

func (m *mockSessions) Revoke(ctx context.Context, id string) error {
	delete(m.sessions, id)
	m.revoked = append(m.revoked, id)
	return nil
}

func (m *mockSessions) Health(ctx context.Context) error { return nil }

// mockNotifier records MaybeNotify calls
type mockNotifier struct {
	calls []struct {
		userID int64
		ticker string
		event  models.CrossoverEvent
	}
}

func (m *mockNotifier) MaybeNotify(ctx context.Context, userID int64, ticker string, event models.CrossoverEvent) {
	m.calls = append(m.calls, struct {
		userID int64
		ticker string
		event  models.CrossoverEvent
	}{userID, ticker, event})
}

func newTestApp(repo *mockRepo, provider *mockProvider) (*App, *mockSessions, *mockNotifier) {
	sessions := newMockSessions()
	notifier := &mockNotifier{}
	a := New(config.NewTestConfig(), repo, provider, sessions, notifier)
	return a, sessions, notifier
}

// risingPoints builds a long daily uptrend ending today, enough history for
// both averages to cover the whole display window
func risingPoints(n int) []models.PricePoint {
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -(n - 1))
	points := make([]models.PricePoint, n)
	for i := range points {
		points[i] = models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: 100 + float64(i)*0.5,
		}
	}
	return points
}

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"aapl", "AAPL", false},
		{" msft ", "MSFT", false},
		{"BRK.B", "BRK.B", false},
		{"MC.PA", "MC.PA", false},
		{"", "", true},
		{"WAYTOOLONGTICKER", "", true},
		{"AAPL; DROP TABLE", "", true},
		{".AAPL", "", true},
	}

	for _, tt := range tests {
		got, err := NormalizeTicker(tt.in)
		if tt.wantErr {
			if !errors.Is(err, models.ErrInvalidTicker) {
				t.Errorf("NormalizeTicker(%q) error = %v, want ErrInvalidTicker", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeTicker(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRegister(t *testing.T) {
	repo := newMockRepo()
	a, _, _ := newTestApp(repo, &mockProvider{})
	ctx := context.Background()

	user, err := a.Register(ctx, "alice", "alice@example.com", "long enough password")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.ID == 0 {
		t.Error("Register() did not assign an id")
	}

	_, err = a.Register(ctx, "alice", "other@example.com", "another password here")
	if !errors.Is(err, models.ErrConflict) {
		t.Errorf("Register(duplicate) error = %v, want ErrConflict", err)
	}
}

func TestLogin(t *testing.T) {
	repo := newMockRepo()
	a, sessions, _ := newTestApp(repo, &mockProvider{})
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice", "alice@example.com", "long enough password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, user, err := a.Login(ctx, "alice", "long enough password")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user == nil || user.Username != "alice" {
		t.Fatalf("Login() user = %+v, want alice", user)
	}

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if int64(claims["user_id"].(float64)) != user.ID {
		t.Errorf("token user_id = %v, want %d", claims["user_id"], user.ID)
	}
	jti := claims["jti"].(string)
	if gotID, err := sessions.Validate(ctx, jti); err != nil || gotID != user.ID {
		t.Errorf("session %q validates to (%d, %v), want (%d, nil)", jti, gotID, err, user.ID)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	repo := newMockRepo()
	a, _, _ := newTestApp(repo, &mockProvider{})
	ctx := context.Background()

	if _, err := a.Register(ctx, "alice", "alice@example.com", "long enough password"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown username and wrong password are indistinguishable
	_, _, err := a.Login(ctx, "nobody", "long enough password")
	if !errors.Is(err, models.ErrNoMatch) {
		t.Errorf("Login(unknown user) error = %v, want ErrNoMatch", err)
	}

	_, _, err = a.Login(ctx, "alice", "wrong password entirely")
	if !errors.Is(err, models.ErrNoMatch) {
		t.Errorf("Login(wrong password) error = %v, want ErrNoMatch", err)
	}
}

func TestLogout(t *testing.T) {
	repo := newMockRepo()
	a, sessions, _ := newTestApp(repo, &mockProvider{})
	ctx := context.Background()

	sessionID, err := sessions.Create(ctx, 1)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := a.Logout(ctx, sessionID); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if _, err := sessions.Validate(ctx, sessionID); !errors.Is(err, models.ErrSessionInvalid) {
		t.Errorf("Validate(after logout) error = %v, want ErrSessionInvalid", err)
	}
}

func TestAnalyze_Uptrend(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{points: risingPoints(600)}
	a, _, notifier := newTestApp(repo, provider)

	result, err := a.Analyze(context.Background(), "aapl", models.Timeframe1Yr, 0)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if result.Ticker != "AAPL" {
		t.Errorf("Ticker = %v, want 'AAPL' (normalized)", result.Ticker)
	}
	if result.Trend != models.TrendUp {
		t.Errorf("Trend = %v, want %v for a steady rise", result.Trend, models.TrendUp)
	}
	if result.Crossover != models.CrossoverNone {
		t.Errorf("Crossover = %v, want none for a steady rise", result.Crossover)
	}
	if len(result.Series.Points) == 0 {
		t.Error("result series is empty")
	}

	// Every notifier call carries the outcome, even CrossoverNone
	if len(notifier.calls) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.calls))
	}
	if notifier.calls[0].event != models.CrossoverNone {
		t.Errorf("notifier event = %v, want none", notifier.calls[0].event)
	}
	if repo.cacheWrites != 1 {
		t.Errorf("cacheWrites = %d, want 1", repo.cacheWrites)
	}
}

func TestAnalyze_CacheHitSkipsProvider(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{points: risingPoints(600)}
	a, _, _ := newTestApp(repo, provider)
	ctx := context.Background()

	if _, err := a.Analyze(ctx, "AAPL", models.Timeframe1Yr, 0); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if _, err := a.Analyze(ctx, "AAPL", models.Timeframe1Yr, 0); err != nil {
		t.Fatalf("Analyze() second call error = %v", err)
	}

	if provider.calls != 1 {
		t.Errorf("provider called %d times, want 1 (second analysis served from cache)", provider.calls)
	}
}

func TestAnalyze_UnknownTicker(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{points: nil}
	a, _, _ := newTestApp(repo, provider)

	_, err := a.Analyze(context.Background(), "ZZZZ", models.Timeframe1Yr, 0)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("Analyze(unknown ticker) error = %v, want ErrInsufficientData", err)
	}
}

func TestAnalyze_InvalidTicker(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{points: risingPoints(600)}
	a, _, _ := newTestApp(repo, provider)

	_, err := a.Analyze(context.Background(), "not a ticker!!", models.Timeframe1Yr, 0)
	if !errors.Is(err, models.ErrInvalidTicker) {
		t.Errorf("Analyze(invalid ticker) error = %v, want ErrInvalidTicker", err)
	}
	if provider.calls != 0 {
		t.Errorf("provider called %d times, want 0 for invalid ticker", provider.calls)
	}
}

func TestAnalyze_ProviderError(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{err: errors.New("upstream down")}
	a, _, _ := newTestApp(repo, provider)

	_, err := a.Analyze(context.Background(), "AAPL", models.Timeframe1Yr, 0)
	if err == nil {
		t.Error("Analyze() error = nil, want provider error")
	}
}

func TestRenderChart(t *testing.T) {
	repo := newMockRepo()
	provider := &mockProvider{points: risingPoints(600)}
	a, _, _ := newTestApp(repo, provider)

	data, err := a.RenderChart(context.Background(), "AAPL", models.Timeframe6Mo)
	if err != nil {
		t.Fatalf("RenderChart() error = %v", err)
	}
	if len(data) < 8 || data[1] != 'P' || data[2] != 'N' || data[3] != 'G' {
		t.Error("RenderChart() did not return a PNG")
	}
}

func TestWatchlistOperations(t *testing.T) {
	repo := newMockRepo()
	a, _, _ := newTestApp(repo, &mockProvider{})
	ctx := context.Background()

	if err := a.AddToWatchlist(ctx, 7, "aapl"); err != nil {
		t.Fatalf("AddToWatchlist() error = %v", err)
	}
	// Idempotent re-add
	if err := a.AddToWatchlist(ctx, 7, "AAPL"); err != nil {
		t.Fatalf("AddToWatchlist(duplicate) error = %v", err)
	}

	entries, err := a.GetWatchlist(ctx, 7)
	if err != nil {
		t.Fatalf("GetWatchlist() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Ticker != "AAPL" {
		t.Errorf("GetWatchlist() = %+v, want single normalized AAPL entry", entries)
	}

	if err := a.AddToWatchlist(ctx, 7, "bad ticker"); !errors.Is(err, models.ErrInvalidTicker) {
		t.Errorf("AddToWatchlist(invalid) error = %v, want ErrInvalidTicker", err)
	}

	if err := a.RemoveFromWatchlist(ctx, 7, "aapl"); err != nil {
		t.Fatalf("RemoveFromWatchlist() error = %v", err)
	}
	entries, _ = a.GetWatchlist(ctx, 7)
	if len(entries) != 0 {
		t.Errorf("GetWatchlist() after removal = %+v, want empty", entries)
	}
}
