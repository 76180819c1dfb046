// Package globesort holds the wire contract of the sort service:
// the globesort.GlobeSort gRPC service and its IntArray message.
package globesort

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// IntArray mirrors
//
//	message IntArray {
//	  repeated int32 values = 1;
//	  double time = 2;
//	}
//
// Time is the server side processing duration in seconds.
type IntArray struct {
	Values []int32
	Time   float64
}

const (
	valuesField protowire.Number = 1
	timeField   protowire.Number = 2
)

// Size is the encoded length of m in bytes.
func (m *IntArray) Size() int {
	n := 0
	if len(m.Values) > 0 {
		p := packedLen(m.Values)
		n += protowire.SizeTag(valuesField) + protowire.SizeBytes(p)
	}
	if m.Time != 0 {
		n += protowire.SizeTag(timeField) + protowire.SizeFixed64()
	}
	return n
}

func packedLen(vals []int32) int {
	n := 0
	for _, v := range vals {
		n += protowire.SizeVarint(uint64(int64(v)))
	}
	return n
}

// Marshal encodes m in proto3 form with values packed.
func (m *IntArray) Marshal() []byte {
	b := make([]byte, 0, m.Size())
	if len(m.Values) > 0 {
		b = protowire.AppendTag(b, valuesField, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(packedLen(m.Values)))
		for _, v := range m.Values {
			b = protowire.AppendVarint(b, uint64(int64(v)))
		}
	}
	if m.Time != 0 {
		b = protowire.AppendTag(b, timeField, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(m.Time))
	}
	return b
}

// Unmarshal decodes b into m, accepting packed and unpacked values and
// skipping unknown fields.
func (m *IntArray) Unmarshal(b []byte) error {
	m.Values = m.Values[:0]
	m.Time = 0
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("globesort: bad tag: %w", protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == valuesField && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return fmt.Errorf("globesort: bad packed values: %w", protowire.ParseError(n))
			}
			b = b[n:]
			for len(packed) > 0 {
				v, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return fmt.Errorf("globesort: bad packed value: %w", protowire.ParseError(k))
				}
				packed = packed[k:]
				m.Values = append(m.Values, int32(v))
			}
		case num == valuesField && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return fmt.Errorf("globesort: bad value: %w", protowire.ParseError(n))
			}
			b = b[n:]
			m.Values = append(m.Values, int32(v))
		case num == timeField && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return fmt.Errorf("globesort: bad time: %w", protowire.ParseError(n))
			}
			b = b[n:]
			m.Time = math.Float64frombits(v)
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("globesort: bad field %d: %w", num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return nil
}
