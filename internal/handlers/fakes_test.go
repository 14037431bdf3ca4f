package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"spacekit-api/internal/events"
	"spacekit-api/internal/models"
	"spacekit-api/internal/repository"
	"spacekit-api/internal/storage"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

type fakeProductStore struct {
	mu           sync.Mutex
	products     []*models.Product
	createErr    error
	findAllCalls int
	// afterFindAll corre después de tomar la instantánea y antes de devolverla.
	afterFindAll func()
}

func (s *fakeProductStore) Create(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Now().UTC()
	s.products = append(s.products, p)
	return nil
}

func (s *fakeProductStore) FindByID(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	for _, p := range s.products {
		if p.ID == objID {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeProductStore) FindAll(context.Context) ([]*models.Product, error) {
	s.mu.Lock()
	s.findAllCalls++
	out := make([]*models.Product, 0, len(s.products))
	for i := len(s.products) - 1; i >= 0; i-- {
		out = append(out, s.products[i])
	}
	hook := s.afterFindAll
	s.afterFindAll = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	return out, nil
}

func (s *fakeProductStore) Delete(_ context.Context, id string) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrInvalidID
	}
	for i, p := range s.products {
		if p.ID == objID {
			s.products = append(s.products[:i], s.products[i+1:]...)
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeProductStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

// ---------------------------------------------------------------------------
// Storage
// ---------------------------------------------------------------------------

type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	deleted   []string
	saveErr   error
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader, _ string) (*storage.Object, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = b
	return &storage.Object{Key: key, URL: "https://img.example.com/" + key}, nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.objects[key]; !ok {
		return storage.ErrObjectNotFound
	}
	delete(s.objects, key)
	return nil
}

// ---------------------------------------------------------------------------
// Contacts
// ---------------------------------------------------------------------------

type fakeContactStore struct {
	mu        sync.Mutex
	messages  []*models.ContactMessage
	createErr error
	listErr   error
}

func (s *fakeContactStore) Create(_ context.Context, msg *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *fakeContactStore) FindAll(context.Context) ([]*models.ContactMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := make([]*models.ContactMessage, 0, len(s.messages))
	for i := len(s.messages) - 1; i >= 0; i-- {
		out = append(out, s.messages[i])
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Buy now
// ---------------------------------------------------------------------------

type fakeBuyNowStore struct {
	mu       sync.Mutex
	items    []*models.BuyNowItem
	stageErr error
}

func (s *fakeBuyNowStore) Stage(_ context.Context, in models.BuyNowInput) (*models.BuyNowItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stageErr != nil {
		return nil, false, s.stageErr
	}
	for _, it := range s.items {
		if it.Name == in.Name {
			it.Quantity++
			return it, false, nil
		}
	}
	it := &models.BuyNowItem{ID: primitive.NewObjectID(), Name: in.Name, Price: in.Price, Image: in.Image, Quantity: 1}
	s.items = append(s.items, it)
	return it, true, nil
}

func (s *fakeBuyNowStore) FindAll(context.Context) ([]*models.BuyNowItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.BuyNowItem{}, s.items...), nil
}

// ---------------------------------------------------------------------------
// Events
// ---------------------------------------------------------------------------

type fakePublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var errBoom = errors.New("boom")

func multipartBody(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if image != nil {
		fw, err := w.CreateFormFile("image", "upload.bin")
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(image); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}
