// Package fdsolve provides a small finite-domain constraint solver: bitset
// domains, a declarative Model of variables and constraints, and a
// backtracking Solver with fixpoint propagation. It is the engine behind
// the exact automaton reconstructor.
//
// Values are 0-indexed integers in [0, maxValue]. Domains are immutable;
// every mutating operation returns a new Domain, which lets the solver share
// structure across copy-on-write search states without locking.
package fdsolve

import (
	"fmt"
	"math/bits"
	"strings"
)

// Domain represents a finite set of non-negative integers a variable may take.
// Implementations must be immutable: methods return new Domains rather than
// mutating the receiver.
type Domain interface {
	// Count returns the number of values in the domain. Count() == 0 means
	// the domain is inconsistent.
	Count() int

	// Has reports whether value is present.
	Has(value int) bool

	// Remove returns a new domain with value removed.
	Remove(value int) Domain

	// IsSingleton reports whether exactly one value remains.
	IsSingleton() bool

	// SingletonValue returns the sole remaining value. Undefined if
	// IsSingleton() is false.
	SingletonValue() int

	// IterateValues calls f for each value in ascending order. f must not
	// mutate the domain.
	IterateValues(f func(value int))

	// Intersect returns the values present in both domains.
	Intersect(other Domain) Domain

	// Clone returns a copy of the domain.
	Clone() Domain

	// Equal reports whether other contains exactly the same values.
	Equal(other Domain) bool

	// Min returns the smallest value, or -1 if the domain is empty.
	Min() int

	// Max returns the largest value, or -1 if the domain is empty.
	Max() int

	String() string
}

// BitSetDomain is a Domain backed by a word-packed bitset. Bit i of the
// bitset represents value i. This gives O(words) set operations and O(1)
// membership tests, which matters because the exact reconstructor builds one
// domain per port and re-propagates on every search decision.
type BitSetDomain struct {
	size  int // values in [0, size)
	words []uint64
}

// FullDomain returns a domain containing every value in [0, size).
func FullDomain(size int) *BitSetDomain {
	d := &BitSetDomain{size: size, words: make([]uint64, wordsFor(size))}
	for v := 0; v < size; v++ {
		d.set(v)
	}
	return d
}

// SingletonDomain returns a domain containing only value, within [0, size).
func SingletonDomain(size, value int) *BitSetDomain {
	d := &BitSetDomain{size: size, words: make([]uint64, wordsFor(size))}
	d.set(value)
	return d
}

// EmptyDomain returns an inconsistent domain over [0, size).
func EmptyDomain(size int) *BitSetDomain {
	return &BitSetDomain{size: size, words: make([]uint64, wordsFor(size))}
}

// DomainFromValues returns a domain over [0, size) containing exactly the
// given values (out-of-range values are ignored).
func DomainFromValues(size int, values []int) *BitSetDomain {
	d := &BitSetDomain{size: size, words: make([]uint64, wordsFor(size))}
	for _, v := range values {
		d.set(v)
	}
	return d
}

func wordsFor(size int) int {
	if size <= 0 {
		return 0
	}
	return (size + 63) / 64
}

func (d *BitSetDomain) set(v int) {
	if v < 0 || v >= d.size {
		return
	}
	d.words[v/64] |= 1 << uint(v%64)
}

// Size returns the domain's declared capacity size (the "N" in [0, N)),
// independent of how many values currently remain.
func (d *BitSetDomain) Size() int { return d.size }

func (d *BitSetDomain) Count() int {
	n := 0
	for _, w := range d.words {
		n += bits.OnesCount64(w)
	}
	return n
}

func (d *BitSetDomain) Has(value int) bool {
	if value < 0 || value >= d.size {
		return false
	}
	return d.words[value/64]>>uint(value%64)&1 == 1
}

func (d *BitSetDomain) Remove(value int) Domain {
	if !d.Has(value) {
		return d
	}
	words := append([]uint64(nil), d.words...)
	words[value/64] &^= 1 << uint(value%64)
	return &BitSetDomain{size: d.size, words: words}
}

func (d *BitSetDomain) IsSingleton() bool { return d.Count() == 1 }

func (d *BitSetDomain) SingletonValue() int {
	for i, w := range d.words {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	panic("fdsolve: SingletonValue called on non-singleton domain")
}

func (d *BitSetDomain) IterateValues(f func(value int)) {
	for i, w := range d.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			f(i*64 + b)
			w &^= 1 << uint(b)
		}
	}
}

func (d *BitSetDomain) Intersect(other Domain) Domain {
	o, ok := other.(*BitSetDomain)
	if !ok || o.size != d.size {
		return EmptyDomain(d.size)
	}
	words := make([]uint64, len(d.words))
	for i := range d.words {
		words[i] = d.words[i] & o.words[i]
	}
	return &BitSetDomain{size: d.size, words: words}
}

func (d *BitSetDomain) Clone() Domain {
	words := append([]uint64(nil), d.words...)
	return &BitSetDomain{size: d.size, words: words}
}

func (d *BitSetDomain) Equal(other Domain) bool {
	o, ok := other.(*BitSetDomain)
	if !ok || o.size != d.size {
		return false
	}
	for i := range d.words {
		if d.words[i] != o.words[i] {
			return false
		}
	}
	return true
}

func (d *BitSetDomain) Min() int {
	for i, w := range d.words {
		if w != 0 {
			return i*64 + bits.TrailingZeros64(w)
		}
	}
	return -1
}

func (d *BitSetDomain) Max() int {
	for i := len(d.words) - 1; i >= 0; i-- {
		if d.words[i] != 0 {
			return i*64 + 63 - bits.LeadingZeros64(d.words[i])
		}
	}
	return -1
}

func (d *BitSetDomain) String() string {
	if d.Count() == 0 {
		return "{}"
	}
	var vals []string
	d.IterateValues(func(v int) { vals = append(vals, fmt.Sprintf("%d", v)) })
	return "{" + strings.Join(vals, ",") + "}"
}
