package board

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"

	"github.com/inkboard/inkboard/engine-go/internal/geom"
)

// DefaultBucketSize is the side length, in world units, of one spatial
// index cell.
const DefaultBucketSize = 256.0

type bucketCoord struct {
	X int64
	Y int64
}

// Store holds the live objects of one board: a primary id-keyed map plus a
// coarse bucket grid used to narrow spatial queries before the exact filter.
// Store is not safe for concurrent use; the session layer serializes access.
type Store struct {
	objects    map[ObjectID]*Object
	buckets    map[bucketCoord]map[ObjectID]struct{}
	bucketSize float64
}

// NewStore returns an empty store with the given bucket size. Sizes at or
// below zero fall back to DefaultBucketSize.
func NewStore(bucketSize float64) *Store {
	if bucketSize <= 0 {
		bucketSize = DefaultBucketSize
	}
	return &Store{
		objects:    make(map[ObjectID]*Object),
		buckets:    make(map[bucketCoord]map[ObjectID]struct{}),
		bucketSize: bucketSize,
	}
}

// Len returns the number of live objects.
func (s *Store) Len() int {
	return len(s.objects)
}

// Get returns the object with the given id, or nil. The returned pointer is
// the store's own copy; callers must not mutate geometry through it.
func (s *Store) Get(id ObjectID) *Object {
	return s.objects[id]
}

// Insert adds obj, replacing any object with the same id and re-indexing it.
func (s *Store) Insert(obj Object) {
	if prev, ok := s.objects[obj.ID]; ok {
		s.unindex(prev.ID, prev.Bounds())
	}
	stored := obj.Clone()
	s.objects[obj.ID] = &stored
	s.index(stored.ID, stored.Bounds())
}

// Remove deletes the object with the given id, reporting whether it existed.
func (s *Store) Remove(id ObjectID) bool {
	obj, ok := s.objects[id]
	if !ok {
		return false
	}
	s.unindex(id, obj.Bounds())
	delete(s.objects, id)
	return true
}

// ApplyPartial applies a sparse update to the object with the given id.
// It reports false when the object does not exist or the props patch is not
// a JSON object; in the latter case the scalar fields are still applied.
func (s *Store) ApplyPartial(id ObjectID, p Partial) bool {
	obj, ok := s.objects[id]
	if !ok {
		return false
	}
	oldBounds := obj.Bounds()

	if p.X != nil {
		obj.X = *p.X
	}
	if p.Y != nil {
		obj.Y = *p.Y
	}
	if p.Width != nil {
		obj.Width = *p.Width
	}
	if p.Height != nil {
		obj.Height = *p.Height
	}
	if p.Rotation != nil {
		obj.Rotation = *p.Rotation
	}
	if p.ZIndex != nil {
		obj.ZIndex = *p.ZIndex
	}
	if p.Version != nil {
		obj.Version = *p.Version
	}
	if p.GroupID != nil && p.GroupID.Set {
		if p.GroupID.Value == nil {
			obj.GroupID = nil
		} else {
			gid := *p.GroupID.Value
			obj.GroupID = &gid
		}
	}

	propsOK := true
	if len(p.Props) > 0 {
		propsOK = mergeProps(obj, p.Props)
	}

	newBounds := obj.Bounds()
	if oldBounds != newBounds {
		s.unindex(id, oldBounds)
		s.index(id, newBounds)
	}
	return propsOK
}

// mergeProps merges a JSON patch into the object's props bag key by key.
// A null value deletes its key. A patch that is not a JSON object (or JSON
// null, which means no change) reports false.
func mergeProps(obj *Object, patch json.RawMessage) bool {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(patch, &keys); err != nil {
		return false
	}
	if keys == nil {
		return true
	}
	if obj.Props == nil {
		obj.Props = make(map[string]any, len(keys))
	}
	for k, raw := range keys {
		if string(raw) == "null" {
			delete(obj.Props, k)
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return false
		}
		obj.Props[k] = v
	}
	return true
}

// SortedObjects returns every object ordered by z-index ascending, with id
// bytes breaking ties so the order is total and stable across replicas.
func (s *Store) SortedObjects() []*Object {
	out := make([]*Object, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, obj)
	}
	sortObjects(out)
	return out
}

// SortedObjectsInBounds returns the objects whose bounds intersect the query,
// in the same order as SortedObjects. Candidates come from the bucket grid;
// an exact bounds check filters out same-bucket misses.
func (s *Store) SortedObjectsInBounds(query geom.Bounds) []*Object {
	seen := make(map[ObjectID]struct{})
	var out []*Object
	s.forEachBucket(query, func(c bucketCoord) {
		for id := range s.buckets[c] {
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			obj := s.objects[id]
			if obj != nil && obj.Bounds().Intersects(query) {
				out = append(out, obj)
			}
		}
	})
	sortObjects(out)
	return out
}

// LoadSnapshot replaces the entire document with the given objects.
func (s *Store) LoadSnapshot(objects []Object) {
	s.objects = make(map[ObjectID]*Object, len(objects))
	s.buckets = make(map[bucketCoord]map[ObjectID]struct{})
	for _, obj := range objects {
		s.Insert(obj)
	}
}

// MaxZIndex returns the highest z-index in the document, or 0 when empty.
func (s *Store) MaxZIndex() int64 {
	var maxZ int64
	for _, obj := range s.objects {
		if obj.ZIndex > maxZ {
			maxZ = obj.ZIndex
		}
	}
	return maxZ
}

func sortObjects(objs []*Object) {
	sort.Slice(objs, func(i, j int) bool {
		if objs[i].ZIndex != objs[j].ZIndex {
			return objs[i].ZIndex < objs[j].ZIndex
		}
		a, b := objs[i].ID, objs[j].ID
		return bytes.Compare(a[:], b[:]) < 0
	})
}

func (s *Store) forEachBucket(b geom.Bounds, fn func(bucketCoord)) {
	minX := int64(math.Floor(b.MinX / s.bucketSize))
	maxX := int64(math.Floor(b.MaxX / s.bucketSize))
	minY := int64(math.Floor(b.MinY / s.bucketSize))
	maxY := int64(math.Floor(b.MaxY / s.bucketSize))
	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			fn(bucketCoord{X: x, Y: y})
		}
	}
}

func (s *Store) index(id ObjectID, b geom.Bounds) {
	s.forEachBucket(b, func(c bucketCoord) {
		set := s.buckets[c]
		if set == nil {
			set = make(map[ObjectID]struct{})
			s.buckets[c] = set
		}
		set[id] = struct{}{}
	})
}

func (s *Store) unindex(id ObjectID, b geom.Bounds) {
	s.forEachBucket(b, func(c bucketCoord) {
		set := s.buckets[c]
		if set == nil {
			return
		}
		delete(set, id)
		if len(set) == 0 {
			delete(s.buckets, c)
		}
	})
}

// bucketCount reports how many grid cells currently hold entries. Test hook
// for the no-orphan invariant.
func (s *Store) bucketCount() int {
	return len(s.buckets)
}
