package util

import (
	"fmt"
	"sort"
	"strings"
)

type ISet[E any] interface {
	Container[E]

	// Add adds the given element to the Set. If the element is already in the
	// set, no effect occurs.
	Add(element E)

	// AddAll adds all elements in s2 to the Set.
	AddAll(s2 ISet[E])

	// Remove removes the given element from the Set. If the element is already
	// not in the set, no effect occurs.
	Remove(element E)

	// Has returns whether the given set has the specified element.
	Has(element E) bool

	// Len returns the number of elements in the set.
	Len() int

	// Copy returns a copy of the Set.
	Copy() ISet[E]

	// Equal returns whether a Set equals another value. It should check if the
	// value implements Set and if so, does a comparison of the elements and
	// not of their ordering. For those sets which implement value mapping to
	// elements, this does NOT compare the data values.
	Equal(o any) bool

	// String is a string with the contents of the set, not gauranateed to be in
	// any particular order.
	String() string

	// StringOrdered is a string with the contents of the set, ordered
	// alphabetically.
	StringOrdered() string

	// Union returns a new Set that is the union of s and o.
	Union(s2 ISet[E]) ISet[E]

	// Intersection returns a new Set that contains the elements that are in both
	// s and o.
	Intersection(s2 ISet[E]) ISet[E]

	// Difference returns a new Set that contains the elements that are in the
	// set but not in s2.
	Difference(s2 ISet[E]) ISet[E]

	// DisjointWith returns whether the set is disjoint (contains no elements
	// of) s2.
	DisjointWith(s2 ISet[E]) bool

	// Empty returns whether the set is empty.
	Empty() bool

	// Any returns whether any element in the set meets some condition.
	Any(predicate func(v E) bool) bool
}

// VSet is a set that contains values mapped to items.
type VSet[E any, V any] interface {
	ISet[E]

	// Set assigns the value of the element. The element is added if it isn'
	// already in the set, and that element is assigned the given data value.
	Set(element E, data V)

	// Get retrieves the value of an element. The value of the element is
	// returned if it exists, otherwise the zero-value for V is returned.
	Get(element E) V
}

// The set-algebra operations (Union/Intersection/Difference/DisjointWith/
// Empty/Any/StringOrdered/String/Equal) are identical across every ISet[E]
// implementation below regardless of backing storage; each of SVSet, KeySet,
// and the StringSet alias over KeySet[string] drives the shared helpers below
// through the ISet[E]/Elements()/Has()/Add() contract rather than
// reimplementing the same map-walking loop three times.

// setElementsOrdered renders a set's elements as a '{' ',' '}'-delimited,
// alphabetized list. Used for the StringOrdered() deterministic serialization
// that state-merging equality checks rely on.
func setElementsOrdered[E any](s Container[E]) string {
	convs := make([]string, 0, len(s.Elements()))
	for _, e := range s.Elements() {
		convs = append(convs, fmt.Sprintf("%v", e))
	}
	sort.Strings(convs)
	return joinBraced(convs)
}

// setElementsString renders a set's elements as a '{' ',' '}'-delimited list
// in map-iteration (unspecified) order.
func setElementsString[E any](s Container[E]) string {
	elems := s.Elements()
	convs := make([]string, len(elems))
	for i := range elems {
		convs[i] = fmt.Sprintf("%v", elems[i])
	}
	return joinBraced(convs)
}

func joinBraced(items []string) string {
	var sb strings.Builder
	sb.WriteRune('{')
	for i := range items {
		sb.WriteString(items[i])
		if i+1 < len(items) {
			sb.WriteString(", ")
		}
	}
	sb.WriteRune('}')
	return sb.String()
}

// setDisjoint reports whether s shares no elements with o.
func setDisjoint[E any](s Container[E], o ISet[E]) bool {
	for _, e := range s.Elements() {
		if o.Has(e) {
			return false
		}
	}
	return true
}

// setAny reports whether any element of s satisfies predicate.
func setAny[E any](s Container[E], predicate func(E) bool) bool {
	for _, e := range s.Elements() {
		if predicate(e) {
			return true
		}
	}
	return false
}

// setEqual reports whether s and o contain the same elements, ignoring any
// mapped values a VSet might carry. o may be an ISet[E] value or a non-nil
// pointer to one.
func setEqual[E any](s ISet[E], o any) bool {
	other, ok := o.(ISet[E])
	if !ok {
		otherPtr, ok := o.(*ISet[E])
		if !ok || otherPtr == nil {
			return false
		}
		other = *otherPtr
	}

	if s.Len() != other.Len() {
		return false
	}
	for _, e := range s.Elements() {
		if !other.Has(e) {
			return false
		}
	}
	return true
}

// setUnion adds every element of s and o (in that order) to a freshly
// constructed empty set.
func setUnion[E any](newEmpty func() ISet[E], s, o ISet[E]) ISet[E] {
	merged := newEmpty()
	merged.AddAll(s)
	merged.AddAll(o)
	return merged
}

// setDifference copies s and removes every element present in o.
func setDifference[E any](sCopy ISet[E], o ISet[E]) ISet[E] {
	for _, e := range o.Elements() {
		sCopy.Remove(e)
	}
	return sCopy
}

// Set that uses strings as its item type and some other type as its stored
// data type.
type SVSet[V any] map[string]V

func NewSVSet[V any](of ...map[string]V) SVSet[V] {
	bs := SVSet[V](map[string]V{})
	for _, m := range of {
		for k := range m {
			bs.Set(k, m[k])
		}
	}
	return bs
}

func (s SVSet[V]) Copy() ISet[string] {
	return NewSVSet(s)
}

// Add adds an index. Has no effect if it's already there.
func (s SVSet[V]) Add(idx string) {
	newRef := new(V)
	s[idx] = *newRef
}

func (s SVSet[V]) Set(idx string, val V) {
	s[idx] = val
}

func (s SVSet[V]) Get(idx string) V {
	return s[idx]
}

func (s SVSet[V]) Has(idx string) bool {
	_, ok := s[idx]
	return ok
}

func (s SVSet[V]) Remove(idx string) {
	delete(s, idx)
}

func (s SVSet[V]) Len() int {
	return len(s)
}

func (s SVSet[V]) Elements() []string {
	elems := []string{}
	for k := range s {
		elems = append(elems, k)
	}
	return elems
}

// AddAll adds every element of s2 to s. If s2 is also a value-carrying set
// over the same value type, the values are copied across too; otherwise each
// added element gets the zero value of V.
func (s SVSet[V]) AddAll(s2 ISet[string]) {
	valuedSet, isValued := s2.(VSet[string, V])
	if isValued {
		for _, k := range valuedSet.Elements() {
			s.Add(k)
			s.Set(k, valuedSet.Get(k))
		}
	} else {
		for _, k := range s2.Elements() {
			s.Add(k)
		}
	}
}

func (s SVSet[V]) Union(s2 ISet[string]) ISet[string] {
	return setUnion[string](func() ISet[string] { return NewSVSet[V]() }, s, s2)
}

// Intersection returns a new Set that contains the elements that are in both
// s and o, carrying over s's values for the elements that survive.
func (s SVSet[V]) Intersection(s2 ISet[string]) ISet[string] {
	newSet := NewSVSet[V]()

	for k := range s {
		if s2.Has(k) {
			newSet.Add(k)
			newSet.Set(k, s.Get(k))
		}
	}

	return newSet
}

// Difference returns a new Set that contains the elements that are in s but not
// in o.
func (s SVSet[V]) Difference(o ISet[string]) ISet[string] {
	return setDifference[string](NewSVSet(s), o)
}

func (s SVSet[V]) DisjointWith(o ISet[string]) bool {
	return setDisjoint[string](s, o)
}

func (s SVSet[V]) Empty() bool {
	return s.Len() == 0
}

func (s SVSet[V]) Any(predicate func(v string) bool) bool {
	return setAny[string](s, predicate)
}

// StringOrdered shows the contents of the set. Items are guaranteed to be
// alphabetized.
func (s SVSet[V]) StringOrdered() string {
	return setElementsOrdered[string](s)
}

// String shows the contents of the set. Items are not guaranteed to be in any
// particular order.
func (s SVSet[V]) String() string {
	return setElementsString[string](s)
}

// Equal returns whether two sets have the same items. If anything other than a
// Set[E], *Set[E], they will not be considered equal.
func (s SVSet[V]) Equal(o any) bool {
	return setEqual[string](s, o)
}

// KeySet is a map[E comparable]bool with methods added to fulfill ISet[E]. It
// is the shared backing for any set whose element type is comparable but
// carries no associated value; StringSet is KeySet[string].
type KeySet[E comparable] map[E]bool

func NewKeySet[E comparable](of ...map[E]bool) KeySet[E] {
	s := KeySet[E]{}
	for _, m := range of {
		for k := range m {
			s.Add(k)
		}
	}
	return s
}

func (s KeySet[E]) Copy() ISet[E] {
	newS := NewKeySet[E]()

	for k := range s {
		newS[k] = true
	}

	return newS
}

// Union returns a new Set that is the union of s and o.
func (s KeySet[E]) Union(o ISet[E]) ISet[E] {
	return setUnion[E](func() ISet[E] { return NewKeySet[E]() }, s, o)
}

// Intersection returns a new Set that contains the elements that are in both
// s and o.
func (s KeySet[E]) Intersection(o ISet[E]) ISet[E] {
	newSet := NewKeySet[E]()

	for k := range s {
		if o.Has(k) {
			newSet.Add(k)
		}
	}

	return newSet
}

// Difference returns a new Set that contains the elements that are in s but not
// in o.
func (s KeySet[E]) Difference(o ISet[E]) ISet[E] {
	return setDifference[E](NewKeySet(s), o)
}

func (s KeySet[E]) DisjointWith(o ISet[E]) bool {
	return setDisjoint[E](s, o)
}

func (s KeySet[E]) Empty() bool {
	return s.Len() == 0
}

func (s KeySet[E]) Any(predicate func(v E) bool) bool {
	return setAny[E](s, predicate)
}

func (s KeySet[E]) Has(value E) bool {
	_, has := s[value]
	return has
}

func (s KeySet[E]) Add(value E) {
	s[value] = true
}

func (s KeySet[E]) Remove(value E) {
	delete(s, value)
}

func (s KeySet[E]) Len() int {
	return len(s)
}

func (s KeySet[E]) AddAll(s2 ISet[E]) {
	for _, element := range s2.Elements() {
		s.Add(element)
	}
}

// StringOrdered shows the contents of the set. Items are guaranteed to be
// alphabetized.
func (s KeySet[E]) StringOrdered() string {
	return setElementsOrdered[E](s)
}

// String shows the contents of the set. Items are not guaranteed to be in any
// particular order.
func (s KeySet[E]) String() string {
	return setElementsString[E](s)
}

// Equal returns whether two sets have the same items. If anything other than an
// ISet[E] or a non-nil *ISet[E] is passed in, they will not be considered
// equal.
//
// This does NOT do Equal on the individual items, but rather a simple equality
// check through Has.
func (s KeySet[E]) Equal(o any) bool {
	return setEqual[E](s, o)
}

// Elements returns the elements of s as a slice. No particular order is
// guaranteed nor should it be relied on.
func (s KeySet[E]) Elements() []E {
	if s == nil {
		return nil
	}

	sl := make([]E, 0)

	for item := range s {
		sl = append(sl, item)
	}

	return sl
}

func KeySetOf[E comparable](sl []E) KeySet[E] {
	if sl == nil {
		return nil
	}

	s := NewKeySet[E]()

	for i := range sl {
		s.Add(sl[i])
	}

	return s
}

// StringSet is the string-keyed specialization of KeySet; it is a true alias
// (not a distinct defined type) so the two share every method above with no
// duplicated map-walking logic.
type StringSet = KeySet[string]

func NewStringSet(of ...map[string]bool) StringSet {
	return NewKeySet(of...)
}

func StringSetOf(sl []string) StringSet {
	return KeySetOf(sl)
}
