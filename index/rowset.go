package index

import (
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// RowSet is a set of row positions backed by a 32-bit Roaring Bitmap.
// It wraps the official roaring implementation.
// Row positions are purely positional; a RowSet never owns row data.
type RowSet struct {
	rb *roaring.Bitmap
}

// NewRowSet creates a new empty row set.
func NewRowSet() *RowSet {
	return &RowSet{
		rb: roaring.New(),
	}
}

// FullRowSet creates a row set covering every position in [0, rowCount).
func FullRowSet(rowCount uint32) *RowSet {
	rs := NewRowSet()
	if rowCount > 0 {
		rs.rb.AddRange(0, uint64(rowCount))
	}
	return rs
}

// Add adds a row position to the set.
func (s *RowSet) Add(pos uint32) {
	s.rb.Add(pos)
}

// Contains checks if a row position is in the set.
func (s *RowSet) Contains(pos uint32) bool {
	return s.rb.Contains(pos)
}

// IsEmpty returns true if the set is empty.
func (s *RowSet) IsEmpty() bool {
	return s.rb.IsEmpty()
}

// Cardinality returns the number of row positions in the set.
func (s *RowSet) Cardinality() uint64 {
	return s.rb.GetCardinality()
}

// Maximum returns the largest row position in the set.
// The set must not be empty.
func (s *RowSet) Maximum() uint32 {
	return s.rb.Maximum()
}

// Clone returns a deep copy of the set.
func (s *RowSet) Clone() *RowSet {
	return &RowSet{
		rb: s.rb.Clone(),
	}
}

// And intersects the set with other in place.
func (s *RowSet) And(other *RowSet) {
	s.rb.And(other.rb)
}

// Or unions the set with other in place.
func (s *RowSet) Or(other *RowSet) {
	s.rb.Or(other.rb)
}

// Equals reports whether both sets contain exactly the same positions.
func (s *RowSet) Equals(other *RowSet) bool {
	return s.rb.Equals(other.rb)
}

// Iterator returns an iterator over the set in ascending position order.
func (s *RowSet) Iterator() iter.Seq[uint32] {
	return func(yield func(uint32) bool) {
		it := s.rb.Iterator()
		for it.HasNext() {
			if !yield(it.Next()) {
				return
			}
		}
	}
}

// ToArray returns the positions as a sorted slice.
func (s *RowSet) ToArray() []uint32 {
	return s.rb.ToArray()
}

// GetSizeInBytes returns the in-memory size of the set in bytes.
func (s *RowSet) GetSizeInBytes() uint64 {
	return s.rb.GetSizeInBytes()
}

// MarshalBinary implements encoding.BinaryMarshaler using the portable
// Roaring serialization format.
func (s *RowSet) MarshalBinary() ([]byte, error) {
	return s.rb.MarshalBinary()
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (s *RowSet) UnmarshalBinary(data []byte) error {
	if s.rb == nil {
		s.rb = roaring.New()
	}
	return s.rb.UnmarshalBinary(data)
}
