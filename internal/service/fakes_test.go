package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/housing-backend/internal/models"
	"github.com/ignatzorin/housing-backend/internal/repository"
	"github.com/ignatzorin/housing-backend/internal/storage"
)

// memoryListings хранилище объявлений в памяти, повторяет предикаты SQL-репозитория.
type memoryListings struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*models.Listing
	clock   time.Time
	lastArg models.ListingFilter
}

func newMemoryListings() *memoryListings {
	return &memoryListings{items: map[uuid.UUID]*models.Listing{}, clock: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *memoryListings) put(l models.Listing) *models.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	m.clock = m.clock.Add(time.Minute)
	if l.CreatedAt.IsZero() {
		l.CreatedAt = m.clock
	}
	l.UpdatedAt = l.CreatedAt
	cp := l
	m.items[l.ID] = &cp
	return &cp
}

func (m *memoryListings) get(id uuid.UUID) *models.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.items[id]; ok {
		cp := *l
		return &cp
	}
	return nil
}

func (m *memoryListings) Create(_ context.Context, l *models.Listing) error {
	stored := m.put(*l)
	l.ID, l.CreatedAt, l.UpdatedAt = stored.ID, stored.CreatedAt, stored.UpdatedAt
	return nil
}

func (m *memoryListings) find(pred func(*models.Listing) bool) (*models.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.items {
		if pred(l) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrListingNotFound
}

func (m *memoryListings) GetByID(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	return m.find(func(l *models.Listing) bool { return l.ID == id })
}

func (m *memoryListings) GetForOwner(_ context.Context, id, ownerID uuid.UUID) (*models.Listing, error) {
	return m.find(func(l *models.Listing) bool { return l.ID == id && l.OwnerID == ownerID })
}

func (m *memoryListings) GetActive(_ context.Context, id uuid.UUID) (*models.Listing, error) {
	return m.find(func(l *models.Listing) bool { return l.ID == id && l.Status == models.ListingStatusActive })
}

func (m *memoryListings) list(pred func(*models.Listing) bool) []models.Listing {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Listing{}
	for _, l := range m.items {
		if pred(l) {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (m *memoryListings) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	return m.list(func(l *models.Listing) bool { return l.OwnerID == ownerID }), nil
}

func (m *memoryListings) ListByStatus(_ context.Context, status models.ListingStatus) ([]models.Listing, error) {
	return m.list(func(l *models.Listing) bool { return l.Status == status }), nil
}

func (m *memoryListings) Search(_ context.Context, f models.ListingFilter, limit, offset int) ([]models.Listing, error) {
	m.lastArg = f
	all := m.list(func(l *models.Listing) bool {
		if l.Status != models.ListingStatusActive {
			return false
		}
		if f.Area != "" && l.Area != f.Area {
			return false
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(l.Title), strings.ToLower(f.Search)) {
			return false
		}
		return true
	})
	if offset >= len(all) {
		return []models.Listing{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (m *memoryListings) UpdateForOwner(_ context.Context, l *models.Listing) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[l.ID]
	if !ok || cur.OwnerID != l.OwnerID {
		return 0, nil
	}
	cp := *l
	cp.Status = cur.Status
	cp.CreatedAt = cur.CreatedAt
	cp.Images = nil
	m.items[l.ID] = &cp
	return 1, nil
}

func (m *memoryListings) SetStatusForOwner(_ context.Context, id, ownerID uuid.UUID, from, to models.ListingStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok || cur.OwnerID != ownerID || cur.Status != from {
		return 0, nil
	}
	cur.Status = to
	return 1, nil
}

func (m *memoryListings) Transition(_ context.Context, id uuid.UUID, from, to models.ListingStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok || cur.Status != from {
		return 0, nil
	}
	cur.Status = to
	return 1, nil
}

func (m *memoryListings) DeleteForOwner(_ context.Context, id, ownerID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.items[id]
	if !ok || cur.OwnerID != ownerID {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func (m *memoryListings) Delete(_ context.Context, id uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return 0, nil
	}
	delete(m.items, id)
	return 1, nil
}

func (m *memoryListings) ExistingIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if _, ok := m.items[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out, nil
}

// memoryImages хранилище записей о фото в памяти.
type memoryImages struct {
	mu        sync.Mutex
	items     []models.ListingImage
	listings  *memoryListings
	createErr error
}

func newMemoryImages(listings *memoryListings) *memoryImages {
	return &memoryImages{listings: listings}
}

func (m *memoryImages) add(listingID uuid.UUID, url string) models.ListingImage {
	m.mu.Lock()
	defer m.mu.Unlock()
	img := models.ListingImage{ID: uuid.New(), ListingID: listingID, URL: url, CreatedAt: time.Now()}
	m.items = append(m.items, img)
	return img
}

func (m *memoryImages) CreateWithinLimit(_ context.Context, img *models.ListingImage, limit int) error {
	if m.listings.get(img.ListingID) == nil {
		return repository.ErrListingNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	count := 0
	for _, existing := range m.items {
		if existing.ListingID == img.ListingID {
			count++
		}
	}
	if count >= limit {
		return repository.ErrImageLimitReached
	}
	img.ID = uuid.New()
	img.CreatedAt = time.Now()
	m.items = append(m.items, *img)
	return nil
}

func (m *memoryImages) ListByListing(_ context.Context, listingID uuid.UUID) ([]models.ListingImage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.ListingImage{}
	for _, img := range m.items {
		if img.ListingID == listingID {
			out = append(out, img)
		}
	}
	return out, nil
}

func (m *memoryImages) ListByListings(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]models.ListingImage, error) {
	out := map[uuid.UUID][]models.ListingImage{}
	for _, id := range ids {
		imgs, _ := m.ListByListing(ctx, id)
		if len(imgs) > 0 {
			out[id] = imgs
		}
	}
	return out, nil
}

func (m *memoryImages) Count(ctx context.Context, listingID uuid.UUID) (int, error) {
	imgs, _ := m.ListByListing(ctx, listingID)
	return len(imgs), nil
}

func (m *memoryImages) GetForOwner(_ context.Context, imageID, listingID, ownerID uuid.UUID) (*models.ListingImage, error) {
	l := m.listings.get(listingID)
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, img := range m.items {
		if img.ID == imageID && img.ListingID == listingID && l != nil && l.OwnerID == ownerID {
			cp := img
			return &cp, nil
		}
	}
	return nil, repository.ErrImageNotFound
}

func (m *memoryImages) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, img := range m.items {
		if img.ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrImageNotFound
}

func (m *memoryImages) AllURLs(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	urls := make([]string, 0, len(m.items))
	for _, img := range m.items {
		urls = append(urls, img.URL)
	}
	return urls, nil
}

const testMediaPrefix = "http://localhost:8080/media/listings/"

// memoryFiles файловое хранилище в памяти.
type memoryFiles struct {
	mu        sync.Mutex
	objects   map[string][]byte
	modTimes  map[string]time.Time
	failPaths map[string]bool
	dirs      map[string]bool
	saveErr   error
}

func newMemoryFiles() *memoryFiles {
	return &memoryFiles{
		objects:   map[string][]byte{},
		modTimes:  map[string]time.Time{},
		failPaths: map[string]bool{},
		dirs:      map[string]bool{},
	}
}

func (m *memoryFiles) putAt(p string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[p] = []byte("x")
	m.modTimes[p] = at
	m.dirs[prefixOf(p)] = true
}

func (m *memoryFiles) has(p string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[p]
	return ok
}

func (m *memoryFiles) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

func (m *memoryFiles) Save(_ context.Context, objectPath string, r io.Reader) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectPath] = buf.Bytes()
	m.modTimes[objectPath] = time.Now()
	m.dirs[prefixOf(objectPath)] = true
	return n, nil
}

func (m *memoryFiles) Delete(_ context.Context, objectPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPaths[objectPath] {
		return errors.New("disk error")
	}
	delete(m.objects, objectPath)
	delete(m.modTimes, objectPath)
	return nil
}

func (m *memoryFiles) PublicURL(objectPath string) string {
	return testMediaPrefix + objectPath
}

func (m *memoryFiles) ObjectPathFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, testMediaPrefix) {
		return "", false
	}
	return strings.TrimPrefix(url, testMediaPrefix), true
}

func (m *memoryFiles) ListObjects(_ context.Context) ([]storage.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]storage.Object, 0, len(m.objects))
	for p, data := range m.objects {
		out = append(out, storage.Object{Path: p, Size: int64(len(data)), ModTime: m.modTimes[p]})
	}
	return out, nil
}

func (m *memoryFiles) ListPrefixes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.dirs))
	for d := range m.dirs {
		out = append(out, d)
	}
	return out, nil
}

func (m *memoryFiles) RemoveEmptyPrefix(_ context.Context, prefix string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirs[prefix] {
		return false, nil
	}
	for p := range m.objects {
		if prefixOf(p) == prefix {
			return false, nil
		}
	}
	delete(m.dirs, prefix)
	return true, nil
}

func (m *memoryFiles) hasDir(prefix string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dirs[prefix]
}

func prefixOf(objectPath string) string {
	dir, _, _ := strings.Cut(objectPath, "/")
	return dir
}

// recordingNotifier запоминает отправленные события.
type recordingNotifier struct {
	mu     sync.Mutex
	user   []string
	admins []string
	owners []uuid.UUID
}

func (n *recordingNotifier) NotifyUser(userID uuid.UUID, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.user = append(n.user, event)
	n.owners = append(n.owners, userID)
}

func (n *recordingNotifier) NotifyAdmins(event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.admins = append(n.admins, event)
}

// stubAreas справочник районов для тестов.
type stubAreas struct{}

func (stubAreas) ResolveArea(input string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "rimal", "الرمال":
		return "rimal", true
	case "khan_younis", "khan younis":
		return "khan_younis", true
	}
	return "", false
}

func (stubAreas) IsArea(code string) bool {
	return code == "rimal" || code == "khan_younis"
}

type stubMessages struct{}

func (stubMessages) Message(lang, key string, _ ...any) string {
	return lang + ":" + key
}

func ptr[T any](v T) *T {
	return &v
}

func userSession() *Session {
	return &Session{UserID: uuid.New(), Email: "owner@example.com"}
}

func adminSession() *Session {
	return &Session{UserID: uuid.New(), Email: "admin@example.com", IsAdmin: true}
}

func sampleListing(owner uuid.UUID, status models.ListingStatus) models.Listing {
	return models.Listing{
		OwnerID:         owner,
		Title:           "Apartment near the sea",
		Type:            models.ListingTypeRent,
		PropertyType:    models.PropertyTypeApartment,
		Area:            "rimal",
		Rooms:           ptr(3),
		Capacity:        4,
		Utilities:       models.DefaultUtilities(),
		ContactName:     "Abu Ahmad",
		ContactPhone:    "0599123456",
		WhatsAppEnabled: true,
		Status:          status,
	}
}
