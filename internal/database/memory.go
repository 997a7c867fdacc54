package database

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewMemoryDatabase returns a Database backed by in-process collections. It
// implements the subset of the document store the repositories use (equality
// filters, $addToSet/$pull/$set) and is the engine every test runs against.
func NewMemoryDatabase() *Database {
	return &Database{
		Users:    NewMemoryCollection(),
		Posts:    NewMemoryCollection(),
		Comments: NewMemoryCollection(),
	}
}

// MemoryCollection is an in-process Collection implementation.
type MemoryCollection struct {
	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]bson.M

	// FailNext forces the next mutating call to return this error. Tests use
	// it to exercise cascade failure paths.
	FailNext error
}

// NewMemoryCollection returns an empty in-process collection.
func NewMemoryCollection() *MemoryCollection {
	return &MemoryCollection{docs: make(map[primitive.ObjectID]bson.M)}
}

func (m *MemoryCollection) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}

func (m *MemoryCollection) InsertOne(_ context.Context, document any) (primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return primitive.NilObjectID, err
	}

	doc, err := toDocument(document)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := doc["_id"].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		doc["_id"] = id
	}
	m.docs[id] = doc
	m.order = append(m.order, id)
	return id, nil
}

func (m *MemoryCollection) Find(_ context.Context, filter bson.M, results any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matched []bson.M
	for _, id := range m.order {
		if doc, ok := m.docs[id]; ok && matches(doc, filter) {
			matched = append(matched, doc)
		}
	}
	return decodeAll(matched, results)
}

func (m *MemoryCollection) FindOne(_ context.Context, filter bson.M, result any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, _, ok := m.first(filter)
	if !ok {
		return ErrNoDocuments
	}
	return decodeDocument(doc, result)
}

func (m *MemoryCollection) FindOneAndUpdate(_ context.Context, filter, update bson.M, result any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	doc, _, ok := m.first(filter)
	if !ok {
		return ErrNoDocuments
	}
	if err := applyUpdate(doc, update); err != nil {
		return err
	}
	return decodeDocument(doc, result)
}

func (m *MemoryCollection) FindOneAndDelete(_ context.Context, filter bson.M, result any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}

	doc, id, ok := m.first(filter)
	if !ok {
		return ErrNoDocuments
	}
	delete(m.docs, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return decodeDocument(doc, result)
}

func (m *MemoryCollection) UpdateMany(_ context.Context, filter, update bson.M) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return 0, err
	}

	var modified int64
	for _, id := range m.order {
		doc := m.docs[id]
		if !matches(doc, filter) {
			continue
		}
		before := fmt.Sprintf("%v", doc)
		if err := applyUpdate(doc, update); err != nil {
			return modified, err
		}
		if fmt.Sprintf("%v", doc) != before {
			modified++
		}
	}
	return modified, nil
}

// first returns the earliest-inserted document matching filter. Callers hold
// the lock.
func (m *MemoryCollection) first(filter bson.M) (bson.M, primitive.ObjectID, bool) {
	for _, id := range m.order {
		if doc, ok := m.docs[id]; ok && matches(doc, filter) {
			return doc, id, true
		}
	}
	return nil, primitive.NilObjectID, false
}

// toDocument converts any bson-marshalable value into a mutable document.
// The round trip also deep-copies, so stored documents never alias caller
// memory.
func toDocument(v any) (bson.M, error) {
	b, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeDocument(doc bson.M, result any) error {
	b, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(b, result)
}

func decodeAll(docs []bson.M, results any) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("results must be a pointer to a slice, got %T", results)
	}
	slice := reflect.MakeSlice(rv.Elem().Type(), len(docs), len(docs))
	for i, doc := range docs {
		if err := decodeDocument(doc, slice.Index(i).Addr().Interface()); err != nil {
			return err
		}
	}
	rv.Elem().Set(slice)
	return nil
}

func matches(doc, filter bson.M) bool {
	for field, want := range filter {
		if !valuesEqual(doc[field], want) {
			return false
		}
	}
	return true
}

func valuesEqual(got, want any) bool {
	if g, ok := got.(primitive.ObjectID); ok {
		w, ok := want.(primitive.ObjectID)
		return ok && g == w
	}
	return reflect.DeepEqual(got, want)
}

func applyUpdate(doc, update bson.M) error {
	for op, raw := range update {
		fields, ok := raw.(bson.M)
		if !ok {
			return fmt.Errorf("update operator %s expects a document, got %T", op, raw)
		}
		for field, value := range fields {
			arr := asArray(doc[field])
			switch op {
			case "$addToSet":
				if !containsValue(arr, value) {
					arr = append(arr, value)
				}
				doc[field] = arr
			case "$pull":
				kept := arr[:0]
				for _, elem := range arr {
					if !valuesEqual(elem, value) {
						kept = append(kept, elem)
					}
				}
				doc[field] = kept
			case "$set":
				doc[field] = value
			default:
				return fmt.Errorf("unsupported update operator %s", op)
			}
		}
	}
	return nil
}

func asArray(v any) bson.A {
	if arr, ok := v.(bson.A); ok {
		return arr
	}
	return bson.A{}
}

func containsValue(arr bson.A, value any) bool {
	for _, elem := range arr {
		if valuesEqual(elem, value) {
			return true
		}
	}
	return false
}
