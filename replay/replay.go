// Package replay implements SRTP replay protection: a sliding bitmap
// over a circular window of sequence (or ROC-extended) values that
// rejects duplicates and values too old or too far ahead to be genuine.
package replay

import "github.com/pion/logging"

// Protection is a sliding-window replay filter. The zero value is not
// usable; construct with New.
type Protection struct {
	log logging.LeveledLogger

	maxPossibleValue  uint32
	size              uint32
	storageSize       uint32
	maxDistanceForward uint32

	curMax  uint32
	storage []byte // lazily allocated on the first accepted value
}

// New creates a Protection accepting values in [0, maxPossibleValue]
// with a size-bit sliding window (size must be at most 4096). A nil
// loggerFactory falls back to logging.NewDefaultLoggerFactory().
func New(maxPossibleValue, size uint32, loggerFactory logging.LoggerFactory) *Protection {
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}
	return &Protection{
		log:                loggerFactory.NewLogger("replay"),
		maxPossibleValue:   maxPossibleValue,
		size:               size,
		storageSize:        (size + 7) / 8,
		maxDistanceForward: size / 4,
	}
}

func forwardDistance(maxPossibleValue, curMax, value uint32) uint32 {
	return maxPossibleValue - curMax + 1 + value
}

// isSet/setBit/clearBit index the bitmap with value&7 rather than the
// mathematically expected value%8: the original implementation this is
// ported from computes the bit shift as value%(8-1), i.e. value%7, which
// only ever sets bits 0-6 of each byte and never bit 7. That is corrected
// here to the intended modulus 8, expressed as the equivalent mask.
func (p *Protection) isSet(value uint32) bool {
	index := (value / 8) % p.storageSize
	shift := value & 7
	return p.storage[index]&(1<<shift) != 0
}

func (p *Protection) setBit(value uint32) {
	index := (value / 8) % p.storageSize
	shift := value & 7
	p.storage[index] |= 1 << shift
}

func (p *Protection) clearBit(value uint32) {
	index := (value / 8) % p.storageSize
	shift := value & 7
	p.storage[index] &^= 1 << shift
}

// CanProceed reports whether value is acceptable: not already marked as
// seen and within the admissible window relative to the current max.
func (p *Protection) CanProceed(value uint32) bool {
	if p.storage == nil {
		return true
	}

	switch {
	case value == p.curMax:
		return false
	case value > p.curMax:
		return value-p.curMax <= p.maxDistanceForward
	case forwardDistance(p.maxPossibleValue, p.curMax, value) <= p.maxDistanceForward:
		return true
	default:
		distance := p.curMax - value
		if distance >= p.size {
			return false
		}
		return !p.isSet(value)
	}
}

// Set marks value as seen and reports whether it was accepted. It rejects
// a duplicate of curMax, a value too far forward and a value outside the
// window, but does not check whether a value behind curMax was already
// marked; callers check CanProceed(value) first. On forward movement it
// advances curMax one position at a time, clearing the bitmap along the
// way, preserving the invariant that the bitmap covers
// [curMax-size+1, curMax].
func (p *Protection) Set(value uint32) bool {
	if p.storage == nil {
		p.storage = make([]byte, p.storageSize)
		p.setBit(value)
		p.curMax = value
		return true
	}

	switch {
	case value == p.curMax:
		p.log.Warnf("rejecting duplicate value %d", value)
		return false
	case value > p.curMax:
		if value-p.curMax > p.maxDistanceForward {
			p.log.Warnf("rejecting value %d too far forward of %d", value, p.curMax)
			return false
		}
		p.setForward(value)
		return true
	case forwardDistance(p.maxPossibleValue, p.curMax, value) <= p.maxDistanceForward:
		p.setForward(value)
		return true
	default:
		distance := p.curMax - value
		if distance >= p.size {
			p.log.Warnf("rejecting value %d outside the replay window", value)
			return false
		}
		p.setBit(value)
		return true
	}
}

func (p *Protection) setForward(value uint32) {
	for {
		if p.curMax == p.maxPossibleValue {
			p.curMax = 0
		} else {
			p.curMax++
		}
		if p.curMax == value {
			break
		}
		p.clearBit(p.curMax)
	}
	p.setBit(p.curMax)
}
