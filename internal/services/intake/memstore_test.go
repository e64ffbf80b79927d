package intake

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xelth-com/receiptdesk/internal/models"
)

type balanceKey struct {
	material  string
	warehouse string
}

type memState struct {
	types      []models.DocumentType
	warehouses []models.Warehouse
	documents  []models.Document
	items      []models.DocumentItem
	materials  []models.Material
	movements  []models.InventoryTransaction
	inventory  map[balanceKey]decimal.Decimal
}

func (s memState) clone() memState {
	c := memState{
		types:      append([]models.DocumentType(nil), s.types...),
		warehouses: append([]models.Warehouse(nil), s.warehouses...),
		documents:  append([]models.Document(nil), s.documents...),
		items:      append([]models.DocumentItem(nil), s.items...),
		materials:  append([]models.Material(nil), s.materials...),
		movements:  append([]models.InventoryTransaction(nil), s.movements...),
		inventory:  make(map[balanceKey]decimal.Decimal, len(s.inventory)),
	}
	for k, v := range s.inventory {
		c.inventory[k] = v
	}
	return c
}

// memStore keeps committed state and discards a transaction's copy on error
type memStore struct {
	mu    sync.Mutex
	state memState

	// collisions makes the next N material inserts report a conflict
	collisions int
	failItem   error
}

func newMemStore() *memStore {
	s := &memStore{state: memState{inventory: map[balanceKey]decimal.Decimal{}}}
	for _, t := range models.DefaultDocumentTypes() {
		t.ID = "type-" + t.Code
		s.state.types = append(s.state.types, t)
	}
	s.state.warehouses = []models.Warehouse{
		{ID: "wh-a", Code: "KA", Name: "Kho A", IsActive: true},
		{ID: "wh-b", Code: "KB", Name: "Kho B", IsActive: true},
		{ID: "wh-old", Code: "KO", Name: "Kho Cũ", IsActive: false},
	}
	return s
}

func (s *memStore) WithinTx(ctx context.Context, fn func(Repo) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.state.clone()
	if err := fn(&memRepo{st: &work, store: s}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *memStore) balance(material, warehouse string) decimal.Decimal {
	return s.state.inventory[balanceKey{material, warehouse}]
}

func (s *memStore) materialByName(name string) *models.Material {
	for i := range s.state.materials {
		if s.state.materials[i].Name == name {
			return &s.state.materials[i]
		}
	}
	return nil
}

type memRepo struct {
	st    *memState
	store *memStore
}

func (r *memRepo) DocumentTypes(ctx context.Context) ([]models.DocumentType, error) {
	return append([]models.DocumentType(nil), r.st.types...), nil
}

func (r *memRepo) ActiveWarehouses(ctx context.Context) ([]models.Warehouse, error) {
	var out []models.Warehouse
	for _, w := range r.st.warehouses {
		if w.IsActive {
			out = append(out, w)
		}
	}
	return out, nil
}

func (r *memRepo) CreateDocument(ctx context.Context, doc *models.Document) error {
	doc.ID = uuid.NewString()
	r.st.documents = append(r.st.documents, *doc)
	return nil
}

func (r *memRepo) DocumentWithItems(ctx context.Context, id string) (*models.Document, error) {
	for _, d := range r.st.documents {
		if d.ID != id {
			continue
		}
		doc := d
		for i := range r.st.types {
			if r.st.types[i].ID == doc.DocumentTypeID {
				t := r.st.types[i]
				doc.DocumentType = &t
			}
		}
		doc.Items = nil
		for _, it := range r.st.items {
			if it.DocumentID == id {
				doc.Items = append(doc.Items, it)
			}
		}
		return &doc, nil
	}
	return nil, ErrNotFound
}

func (r *memRepo) UpdateDocument(ctx context.Context, doc *models.Document) error {
	for i := range r.st.documents {
		if r.st.documents[i].ID == doc.ID {
			r.st.documents[i].DocumentNumber = doc.DocumentNumber
			r.st.documents[i].DocumentDate = doc.DocumentDate
			r.st.documents[i].Notes = doc.Notes
			r.st.documents[i].Status = doc.Status
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) DeleteDocument(ctx context.Context, id string) error {
	found := false
	docs := r.st.documents[:0]
	for _, d := range r.st.documents {
		if d.ID == id {
			found = true
			continue
		}
		docs = append(docs, d)
	}
	if !found {
		return ErrNotFound
	}
	r.st.documents = docs

	items := r.st.items[:0]
	for _, it := range r.st.items {
		if it.DocumentID != id {
			items = append(items, it)
		}
	}
	r.st.items = items
	return nil
}

func (r *memRepo) MaterialByKey(ctx context.Context, nameKey string) (*models.Material, error) {
	for _, m := range r.st.materials {
		if m.NameKey == nameKey {
			found := m
			return &found, nil
		}
	}
	return nil, nil
}

func (r *memRepo) InsertMaterial(ctx context.Context, m *models.Material) (bool, error) {
	if r.store.collisions > 0 {
		r.store.collisions--
		return false, nil
	}
	for _, existing := range r.st.materials {
		if existing.NameKey == m.NameKey || existing.Code == m.Code {
			return false, nil
		}
	}
	m.ID = uuid.NewString()
	r.st.materials = append(r.st.materials, *m)
	return true, nil
}

func (r *memRepo) CreateItem(ctx context.Context, item *models.DocumentItem) error {
	if r.store.failItem != nil {
		return r.store.failItem
	}
	item.ID = uuid.NewString()
	r.st.items = append(r.st.items, *item)
	return nil
}

func (r *memRepo) UpdateItem(ctx context.Context, item *models.DocumentItem) error {
	for i := range r.st.items {
		if r.st.items[i].ID == item.ID && r.st.items[i].DocumentID == item.DocumentID {
			r.st.items[i] = *item
			return nil
		}
	}
	return ErrNotFound
}

func (r *memRepo) ApplyMovement(ctx context.Context, mv *models.InventoryTransaction) error {
	if mv.WarehouseID == "" || mv.MaterialID == "" {
		return fmt.Errorf("movement without warehouse or material")
	}
	mv.ID = uuid.NewString()
	r.st.movements = append(r.st.movements, *mv)
	key := balanceKey{mv.MaterialID, mv.WarehouseID}
	r.st.inventory[key] = r.st.inventory[key].Add(mv.Delta())
	return nil
}

func (r *memRepo) DocumentMovements(ctx context.Context, documentID string) ([]models.InventoryTransaction, error) {
	var out []models.InventoryTransaction
	for _, mv := range r.st.movements {
		if mv.DocumentID == documentID {
			out = append(out, mv)
		}
	}
	return out, nil
}

func (r *memRepo) RevertMovements(ctx context.Context, documentID string) error {
	kept := r.st.movements[:0]
	for _, mv := range r.st.movements {
		if mv.DocumentID != documentID {
			kept = append(kept, mv)
			continue
		}
		key := balanceKey{mv.MaterialID, mv.WarehouseID}
		r.st.inventory[key] = r.st.inventory[key].Sub(mv.Delta())
	}
	r.st.movements = kept
	return nil
}
