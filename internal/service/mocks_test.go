package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vishalcoc44/Ai-Battlefield/internal/domain"
	"github.com/vishalcoc44/Ai-Battlefield/internal/store"
)

// mockTx runs fn directly. InOwnerTx fails like the real lock query when the
// owner has no profile.
type mockTx struct {
	profiles *mockProfileStore
}

func (m *mockTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (m *mockTx) InOwnerTx(ctx context.Context, owner uuid.UUID, fn func(ctx context.Context) error) error {
	if m.profiles != nil {
		if _, err := m.profiles.GetByID(ctx, owner); err != nil {
			return err
		}
	}
	return fn(ctx)
}

type mockProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*domain.UserProfile
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[uuid.UUID]*domain.UserProfile)}
}

func (m *mockProfileStore) add(id uuid.UUID) *domain.UserProfile {
	p := domain.NewProfile(id, "user-"+id.String()[:8])
	m.profiles[id] = p
	return p
}

func (m *mockProfileStore) Create(ctx context.Context, p *domain.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[p.ID]; ok {
		return store.ErrConflict
	}
	cp := *p
	m.profiles[p.ID] = &cp
	return nil
}

func (m *mockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProfileStore) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(m.profiles))
	for id := range m.profiles {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *mockProfileStore) update(id uuid.UUID, fn func(p *domain.UserProfile)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return store.ErrNotFound
	}
	fn(p)
	return nil
}

func (m *mockProfileStore) UpdateCalibration(ctx context.Context, id uuid.UUID, brier float64, rank domain.CalibrationRank) error {
	return m.update(id, func(p *domain.UserProfile) { p.BrierScore, p.CalibrationRank = brier, rank })
}

func (m *mockProfileStore) UpdateCalm(ctx context.Context, id uuid.UUID, calm float64, total int) error {
	return m.update(id, func(p *domain.UserProfile) { p.CalmScore, p.TotalTrainingSessions = calm, total })
}

func (m *mockProfileStore) UpdateViewsChanged(ctx context.Context, id uuid.UUID, n int) error {
	return m.update(id, func(p *domain.UserProfile) { p.ViewsChanged = n })
}

func (m *mockProfileStore) UpdateXP(ctx context.Context, id uuid.UUID, xp, level int) error {
	return m.update(id, func(p *domain.UserProfile) { p.XP, p.Level = xp, level })
}

func (m *mockProfileStore) IncrementTotalDebates(ctx context.Context, id uuid.UUID) error {
	return m.update(id, func(p *domain.UserProfile) { p.TotalDebates++ })
}

func (m *mockProfileStore) IncrementTotalPredictions(ctx context.Context, id uuid.UUID) error {
	return m.update(id, func(p *domain.UserProfile) { p.TotalPredictions++ })
}

type mockUserStore struct {
	users map[uuid.UUID]*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uuid.UUID]*domain.User)}
}

func (m *mockUserStore) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Username == u.Username {
			return store.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserStore) GetByAPIKeyHash(ctx context.Context, hash string) (*domain.User, error) {
	for _, u := range m.users {
		if u.APIKeyHash == hash {
			cp := *u
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

type mockBeliefStore struct {
	beliefs   map[uuid.UUID]*domain.Belief
	changes   []domain.BeliefChange
	appendErr error

	similarCalls int
}

func newMockBeliefStore() *mockBeliefStore {
	return &mockBeliefStore{beliefs: make(map[uuid.UUID]*domain.Belief)}
}

func (m *mockBeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	b.ID = uuid.New()
	b.CreatedAt = time.Now()
	b.LastUpdatedAt = b.CreatedAt
	cp := *b
	m.beliefs[b.ID] = &cp
	return nil
}

func (m *mockBeliefStore) GetByID(ctx context.Context, id, owner uuid.UUID) (*domain.Belief, error) {
	b, ok := m.beliefs[id]
	if !ok || b.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *mockBeliefStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.Belief, error) {
	out := []domain.Belief{}
	for _, b := range m.beliefs {
		if b.OwnerID == owner {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *mockBeliefStore) FindByTopic(ctx context.Context, owner uuid.UUID, topic string) (*domain.Belief, error) {
	for _, b := range m.beliefs {
		if b.OwnerID == owner && strings.EqualFold(b.Topic, topic) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockBeliefStore) FindSimilarTopic(ctx context.Context, owner uuid.UUID, embedding []float32, threshold float32) (*domain.Belief, error) {
	m.similarCalls++
	for _, b := range m.beliefs {
		if b.OwnerID == owner && cosine(b.TopicEmbedding, embedding) >= threshold {
			cp := *b
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockBeliefStore) UpdateConfidence(ctx context.Context, b *domain.Belief) error {
	existing, ok := m.beliefs[b.ID]
	if !ok || existing.OwnerID != b.OwnerID {
		return store.ErrNotFound
	}
	existing.CurrentConfidence = b.CurrentConfidence
	existing.Status = b.Status
	existing.LastUpdatedAt = time.Now()
	return nil
}

func (m *mockBeliefStore) AppendChange(ctx context.Context, c *domain.BeliefChange) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	c.ID = uuid.New()
	c.ChangedAt = time.Now()
	m.changes = append(m.changes, *c)
	return nil
}

func (m *mockBeliefStore) ListChanges(ctx context.Context, owner uuid.UUID) ([]domain.BeliefChange, error) {
	out := []domain.BeliefChange{}
	for _, c := range m.changes {
		if c.OwnerID == owner {
			out = append(out, c)
		}
	}
	return out, nil
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot float32
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot
}

// mockEmbedder returns the fixed vector registered for a topic.
type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.vectors[text], nil
}

type mockPredictionStore struct {
	mu          sync.Mutex
	predictions map[uuid.UUID]*domain.Prediction
	scope       scopeFunc
}

// scopeFunc reports the communities a user belongs to.
type scopeFunc func(userID uuid.UUID) map[uuid.UUID]bool

func inScope(scope scopeFunc, userID uuid.UUID, communityID *uuid.UUID, includeGlobal bool) bool {
	if communityID == nil {
		return includeGlobal
	}
	return scope != nil && scope(userID)[*communityID]
}

func newMockPredictionStore() *mockPredictionStore {
	return &mockPredictionStore{predictions: make(map[uuid.UUID]*domain.Prediction)}
}

func (m *mockPredictionStore) Create(ctx context.Context, p *domain.Prediction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	m.predictions[p.ID] = &cp
	return nil
}

func (m *mockPredictionStore) GetByID(ctx context.Context, id, owner uuid.UUID) (*domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[id]
	if !ok || p.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPredictionStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Prediction{}
	for _, p := range m.predictions {
		if p.OwnerID == owner {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPredictionStore) ListOpen(ctx context.Context, limit int) ([]domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Prediction{}
	for _, p := range m.predictions {
		if !p.Resolved {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPredictionStore) ListScoped(ctx context.Context, userID uuid.UUID, includeGlobal bool, limit int) ([]domain.Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Prediction{}
	for _, p := range m.predictions {
		if inScope(m.scope, userID, p.CommunityID, includeGlobal) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockPredictionStore) UpdateProbability(ctx context.Context, id, owner uuid.UUID, probability float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[id]
	if !ok || p.OwnerID != owner {
		return store.ErrNotFound
	}
	if p.Resolved {
		return domain.ErrAlreadyResolved
	}
	p.Probability = probability
	return nil
}

func (m *mockPredictionStore) Resolve(ctx context.Context, id, owner uuid.UUID, outcome bool, brier float64, resolvedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.predictions[id]
	if !ok || p.OwnerID != owner {
		return store.ErrNotFound
	}
	if p.Resolved {
		return domain.ErrAlreadyResolved
	}
	p.Resolved = true
	p.Outcome = &outcome
	p.BrierScore = &brier
	p.ResolvedAt = &resolvedAt
	return nil
}

func (m *mockPredictionStore) ResolvedBrierScores(ctx context.Context, owner uuid.UUID) ([]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var scores []float64
	for _, p := range m.predictions {
		if p.OwnerID == owner && p.Resolved && p.BrierScore != nil {
			scores = append(scores, *p.BrierScore)
		}
	}
	return scores, nil
}

type mockDeEscalationStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*domain.DeEscalationSession
	turns    []domain.DeEscalationTurn
}

func newMockDeEscalationStore() *mockDeEscalationStore {
	return &mockDeEscalationStore{sessions: make(map[uuid.UUID]*domain.DeEscalationSession)}
}

func (m *mockDeEscalationStore) CreateSession(ctx context.Context, s *domain.DeEscalationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockDeEscalationStore) GetSession(ctx context.Context, id, owner uuid.UUID) (*domain.DeEscalationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockDeEscalationStore) UpdateProgress(ctx context.Context, s *domain.DeEscalationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sessions[s.ID]
	if !ok || existing.OwnerID != s.OwnerID {
		return store.ErrNotFound
	}
	if existing.Completed {
		return domain.ErrSessionCompleted
	}
	existing.CurrentCalmScore = s.CurrentCalmScore
	existing.TurnCount = s.TurnCount
	existing.PositiveTurns = s.PositiveTurns
	existing.NegativeTurns = s.NegativeTurns
	return nil
}

func (m *mockDeEscalationStore) Complete(ctx context.Context, s *domain.DeEscalationSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sessions[s.ID]
	if !ok || existing.OwnerID != s.OwnerID {
		return store.ErrNotFound
	}
	if existing.Completed {
		return domain.ErrSessionCompleted
	}
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *mockDeEscalationStore) AppendTurn(ctx context.Context, t *domain.DeEscalationTurn) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = uuid.New()
	t.CreatedAt = time.Now()
	m.turns = append(m.turns, *t)
	return nil
}

func (m *mockDeEscalationStore) ListTurns(ctx context.Context, sessionID uuid.UUID) ([]domain.DeEscalationTurn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.DeEscalationTurn{}
	for _, t := range m.turns {
		if t.SessionID == sessionID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockDeEscalationStore) ListCompleted(ctx context.Context, owner uuid.UUID) ([]domain.DeEscalationSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.DeEscalationSession{}
	for _, s := range m.sessions {
		if s.OwnerID == owner && s.Completed {
			out = append(out, *s)
		}
	}
	return out, nil
}

type mockBiasStore struct {
	biases []domain.CognitiveBias
}

func (m *mockBiasStore) Create(ctx context.Context, b *domain.CognitiveBias) error {
	b.ID = uuid.New()
	if b.DetectedAt.IsZero() {
		b.DetectedAt = time.Now()
	}
	m.biases = append(m.biases, *b)
	return nil
}

func (m *mockBiasStore) ListByOwner(ctx context.Context, owner uuid.UUID) ([]domain.CognitiveBias, error) {
	out := []domain.CognitiveBias{}
	for _, b := range m.biases {
		if b.OwnerID == owner {
			out = append(out, b)
		}
	}
	return out, nil
}

type mockDebateStore struct {
	debates  map[uuid.UUID]*domain.Debate
	messages []domain.DebateMessage
}

func newMockDebateStore() *mockDebateStore {
	return &mockDebateStore{debates: make(map[uuid.UUID]*domain.Debate)}
}

func (m *mockDebateStore) Create(ctx context.Context, d *domain.Debate) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	cp := *d
	m.debates[d.ID] = &cp
	return nil
}

func (m *mockDebateStore) GetByID(ctx context.Context, id, owner uuid.UUID) (*domain.Debate, error) {
	d, ok := m.debates[id]
	if !ok || d.OwnerID != owner {
		return nil, store.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *mockDebateStore) UpdateSteelManLevel(ctx context.Context, id uuid.UUID, level float64) error {
	d, ok := m.debates[id]
	if !ok {
		return store.ErrNotFound
	}
	d.SteelManLevel = level
	return nil
}

func (m *mockDebateStore) End(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	d, ok := m.debates[id]
	if !ok {
		return store.ErrNotFound
	}
	if d.Status == domain.DebateEnded {
		return store.ErrConflict
	}
	d.Status = domain.DebateEnded
	d.EndedAt = &endedAt
	return nil
}

func (m *mockDebateStore) AppendMessage(ctx context.Context, msg *domain.DebateMessage) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockDebateStore) ListMessages(ctx context.Context, debateID uuid.UUID) ([]domain.DebateMessage, error) {
	out := []domain.DebateMessage{}
	for _, msg := range m.messages {
		if msg.DebateID == debateID {
			out = append(out, msg)
		}
	}
	return out, nil
}

type mockGroupStore struct {
	rings        map[uuid.UUID]*domain.GroupDebate
	participants map[uuid.UUID]map[uuid.UUID]*domain.GroupParticipant
	messages     []domain.GroupMessage
	locks        int
	scope        scopeFunc
}

func newMockGroupStore() *mockGroupStore {
	return &mockGroupStore{
		rings:        make(map[uuid.UUID]*domain.GroupDebate),
		participants: make(map[uuid.UUID]map[uuid.UUID]*domain.GroupParticipant),
	}
}

func (m *mockGroupStore) Create(ctx context.Context, g *domain.GroupDebate) error {
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	cp := *g
	m.rings[g.ID] = &cp
	return nil
}

func (m *mockGroupStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.GroupDebate, error) {
	g, ok := m.rings[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *g
	cp.ParticipantCount, _ = m.CountActiveParticipants(ctx, id)
	return &cp, nil
}

func (m *mockGroupStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.GroupDebate, error) {
	m.locks++
	return m.GetByID(ctx, id)
}

func (m *mockGroupStore) ListActive(ctx context.Context, includeAnonymous bool) ([]domain.GroupDebate, error) {
	out := []domain.GroupDebate{}
	for _, g := range m.rings {
		if g.Status == domain.GroupDebateActive && (includeAnonymous || !g.IsAnonymous) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockGroupStore) ListFeatured(ctx context.Context) ([]domain.GroupDebate, error) {
	active, _ := m.ListActive(ctx, true)
	out := []domain.GroupDebate{}
	for _, g := range active {
		if g.IsFeatured {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGroupStore) ListScoped(ctx context.Context, userID uuid.UUID, includeGlobal bool) ([]domain.GroupDebate, error) {
	active, _ := m.ListActive(ctx, true)
	out := []domain.GroupDebate{}
	for _, g := range active {
		if inScope(m.scope, userID, g.CommunityID, includeGlobal) {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockGroupStore) Update(ctx context.Context, g *domain.GroupDebate) error {
	if _, ok := m.rings[g.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *g
	m.rings[g.ID] = &cp
	return nil
}

func (m *mockGroupStore) CountActiveParticipants(ctx context.Context, debateID uuid.UUID) (int, error) {
	n := 0
	for _, p := range m.participants[debateID] {
		if p.LeftAt == nil {
			n++
		}
	}
	return n, nil
}

func (m *mockGroupStore) IsActiveParticipant(ctx context.Context, debateID, userID uuid.UUID) (bool, error) {
	p, ok := m.participants[debateID][userID]
	return ok && p.LeftAt == nil, nil
}

func (m *mockGroupStore) Join(ctx context.Context, p *domain.GroupParticipant) error {
	if m.participants[p.DebateID] == nil {
		m.participants[p.DebateID] = make(map[uuid.UUID]*domain.GroupParticipant)
	}
	existing, ok := m.participants[p.DebateID][p.UserID]
	if ok {
		if existing.LeftAt != nil {
			existing.LeftAt = nil
			existing.JoinedAt = time.Now()
		}
		if p.AnonymousMaskID != nil {
			existing.AnonymousMaskID = p.AnonymousMaskID
		}
		*p = *existing
		return nil
	}
	p.ID = uuid.New()
	p.JoinedAt = time.Now()
	cp := *p
	m.participants[p.DebateID][p.UserID] = &cp
	return nil
}

func (m *mockGroupStore) Leave(ctx context.Context, debateID, userID uuid.UUID, leftAt time.Time) error {
	p, ok := m.participants[debateID][userID]
	if !ok || p.LeftAt != nil {
		return store.ErrNotFound
	}
	p.LeftAt = &leftAt
	return nil
}

func (m *mockGroupStore) AppendMessage(ctx context.Context, msg *domain.GroupMessage) error {
	msg.ID = uuid.New()
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *mockGroupStore) ListMessages(ctx context.Context, debateID uuid.UUID, limit int) ([]domain.GroupMessage, error) {
	out := []domain.GroupMessage{}
	for _, msg := range m.messages {
		if msg.DebateID == debateID {
			out = append(out, msg)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

type mockSubscriber struct {
	ch chan domain.GroupMessage
}

func (m *mockSubscriber) Subscribe(debateID uuid.UUID) (<-chan domain.GroupMessage, func()) {
	return m.ch, func() {}
}

var errStoreDown = errors.New("connection refused")

type mockSkillStore struct {
	skills map[uuid.UUID]map[string]*domain.CognitiveSkill
}

func newMockSkillStore() *mockSkillStore {
	return &mockSkillStore{skills: make(map[uuid.UUID]map[string]*domain.CognitiveSkill)}
}

func (m *mockSkillStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.CognitiveSkill, error) {
	out := []domain.CognitiveSkill{}
	for _, sk := range m.skills[userID] {
		out = append(out, *sk)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SkillName < out[j].SkillName })
	return out, nil
}

func (m *mockSkillStore) Upsert(ctx context.Context, sk *domain.CognitiveSkill) error {
	if m.skills[sk.UserID] == nil {
		m.skills[sk.UserID] = make(map[string]*domain.CognitiveSkill)
	}
	if existing, ok := m.skills[sk.UserID][sk.SkillName]; ok {
		existing.Level = sk.Level
		existing.UpdatedAt = time.Now()
		*sk = *existing
		return nil
	}
	sk.ID = uuid.New()
	sk.UpdatedAt = time.Now()
	cp := *sk
	m.skills[sk.UserID][sk.SkillName] = &cp
	return nil
}

func (m *mockSkillStore) EnsureDefaults(ctx context.Context, userID uuid.UUID) error {
	for _, d := range domain.DefaultSkills {
		if _, ok := m.skills[userID][d.SkillName]; ok {
			continue
		}
		sk := d
		sk.UserID = userID
		if err := m.Upsert(ctx, &sk); err != nil {
			return err
		}
	}
	return nil
}

type mockAchievementStore struct {
	catalog  []domain.Achievement
	unlocked []domain.UserAchievement
}

func newMockAchievementStore() *mockAchievementStore {
	return &mockAchievementStore{catalog: []domain.Achievement{
		{ID: uuid.New(), Code: "first_prediction", Title: "Oracle in Training", RequirementType: domain.RequirementPredictions, RequirementCount: 1},
		{ID: uuid.New(), Code: "superforecaster", Title: "Superforecaster", RequirementType: domain.RequirementCalibrationRank, RequirementCount: 1},
		{ID: uuid.New(), Code: "level_five", Title: "Seasoned Thinker", RequirementType: domain.RequirementLevel, RequirementCount: 5},
		{ID: uuid.New(), Code: "community_pillar", Title: "Community Pillar", RequirementType: "communities", RequirementCount: 1},
	}}
}

func (m *mockAchievementStore) ListAll(ctx context.Context) ([]domain.Achievement, error) {
	return append([]domain.Achievement(nil), m.catalog...), nil
}

func (m *mockAchievementStore) GetByCode(ctx context.Context, code string) (*domain.Achievement, error) {
	for _, a := range m.catalog {
		if a.Code == code {
			cp := a
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockAchievementStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.UserAchievement, error) {
	out := []domain.UserAchievement{}
	for _, ua := range m.unlocked {
		if ua.UserID == userID {
			out = append(out, ua)
		}
	}
	return out, nil
}

func (m *mockAchievementStore) Unlock(ctx context.Context, ua *domain.UserAchievement) error {
	for _, held := range m.unlocked {
		if held.UserID == ua.UserID && held.AchievementID == ua.AchievementID {
			return store.ErrConflict
		}
	}
	ua.ID = uuid.New()
	ua.UnlockedAt = time.Now()
	m.unlocked = append(m.unlocked, *ua)
	return nil
}

type mockCommunityStore struct {
	communities map[uuid.UUID]*domain.Community
	members     map[uuid.UUID]map[uuid.UUID]*domain.CommunityMember
	invites     map[uuid.UUID]*domain.CommunityInvite
	users       *mockUserStore
	codes       []string
}

func newMockCommunityStore(users *mockUserStore) *mockCommunityStore {
	return &mockCommunityStore{
		communities: make(map[uuid.UUID]*domain.Community),
		members:     make(map[uuid.UUID]map[uuid.UUID]*domain.CommunityMember),
		invites:     make(map[uuid.UUID]*domain.CommunityInvite),
		users:       users,
	}
}

// memberships is a scopeFunc over the stored members.
func (m *mockCommunityStore) memberships(userID uuid.UUID) map[uuid.UUID]bool {
	out := make(map[uuid.UUID]bool)
	for cid, set := range m.members {
		if _, ok := set[userID]; ok {
			out[cid] = true
		}
	}
	return out
}

func (m *mockCommunityStore) Create(ctx context.Context, c *domain.Community) error {
	for _, existing := range m.communities {
		if existing.InviteCode == c.InviteCode {
			return store.ErrConflict
		}
	}
	m.codes = append(m.codes, c.InviteCode)
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.communities[c.ID] = &cp
	return nil
}

func (m *mockCommunityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	c, ok := m.communities[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	cp.UserRole = ""
	cp.MemberCount = len(m.members[id])
	return &cp, nil
}

func (m *mockCommunityStore) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Community, error) {
	return m.GetByID(ctx, id)
}

func (m *mockCommunityStore) ListByMember(ctx context.Context, userID uuid.UUID) ([]domain.Community, error) {
	out := []domain.Community{}
	for cid := range m.memberships(userID) {
		c, _ := m.GetByID(ctx, cid)
		c.UserRole = m.members[cid][userID].Role
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCommunityStore) ListUnlocked(ctx context.Context) ([]domain.Community, error) {
	out := []domain.Community{}
	for id, c := range m.communities {
		if !c.IsLocked {
			cp, _ := m.GetByID(ctx, id)
			out = append(out, *cp)
		}
	}
	return out, nil
}

func (m *mockCommunityStore) Update(ctx context.Context, c *domain.Community) error {
	if _, ok := m.communities[c.ID]; !ok {
		return store.ErrNotFound
	}
	cp := *c
	m.communities[c.ID] = &cp
	return nil
}

func (m *mockCommunityStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.communities[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.communities, id)
	delete(m.members, id)
	return nil
}

func (m *mockCommunityStore) AddMember(ctx context.Context, mem *domain.CommunityMember) error {
	if m.members[mem.CommunityID] == nil {
		m.members[mem.CommunityID] = make(map[uuid.UUID]*domain.CommunityMember)
	}
	if _, ok := m.members[mem.CommunityID][mem.UserID]; ok {
		return store.ErrConflict
	}
	mem.ID = uuid.New()
	mem.JoinedAt = time.Now()
	if u, err := m.users.GetByID(ctx, mem.UserID); err == nil {
		mem.Username = u.Username
	}
	cp := *mem
	m.members[mem.CommunityID][mem.UserID] = &cp
	return nil
}

func (m *mockCommunityStore) GetMember(ctx context.Context, communityID, userID uuid.UUID) (*domain.CommunityMember, error) {
	mem, ok := m.members[communityID][userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *mem
	return &cp, nil
}

func (m *mockCommunityStore) ListMembers(ctx context.Context, communityID uuid.UUID) ([]domain.CommunityMember, error) {
	out := []domain.CommunityMember{}
	for _, mem := range m.members[communityID] {
		out = append(out, *mem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JoinedAt.Before(out[j].JoinedAt) })
	return out, nil
}

func (m *mockCommunityStore) CountMembers(ctx context.Context, communityID uuid.UUID) (int, error) {
	return len(m.members[communityID]), nil
}

func (m *mockCommunityStore) UpdateMemberRole(ctx context.Context, communityID, userID uuid.UUID, role domain.CommunityRole) error {
	mem, ok := m.members[communityID][userID]
	if !ok {
		return store.ErrNotFound
	}
	mem.Role = role
	return nil
}

func (m *mockCommunityStore) RemoveMember(ctx context.Context, communityID, userID uuid.UUID) error {
	if _, ok := m.members[communityID][userID]; !ok {
		return store.ErrNotFound
	}
	delete(m.members[communityID], userID)
	return nil
}

func (m *mockCommunityStore) CreateInvite(ctx context.Context, inv *domain.CommunityInvite) error {
	inv.ID = uuid.New()
	inv.CreatedAt = time.Now()
	cp := *inv
	m.invites[inv.ID] = &cp
	return nil
}

func (m *mockCommunityStore) GetInvite(ctx context.Context, communityID uuid.UUID, code string) (*domain.CommunityInvite, error) {
	for _, inv := range m.invites {
		if inv.CommunityID == communityID && inv.InviteCode == code {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *mockCommunityStore) ListInvites(ctx context.Context, communityID uuid.UUID) ([]domain.CommunityInvite, error) {
	out := []domain.CommunityInvite{}
	for _, inv := range m.invites {
		if inv.CommunityID == communityID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (m *mockCommunityStore) IncrementInviteUses(ctx context.Context, id uuid.UUID) error {
	inv, ok := m.invites[id]
	if !ok {
		return store.ErrNotFound
	}
	inv.CurrentUses++
	return nil
}
