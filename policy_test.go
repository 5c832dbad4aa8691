package wsframe

import (
	"testing"

	"nhooyr.io/wsframe/internal/test/assert"
)

func TestPolicy(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		policy Policy
		b      []byte
		// n is the number of bytes consumed before the error.
		n   int
		err error
	}{
		{
			name:   "reservedBits",
			policy: Policy{RejectReservedBits: true},
			b:      []byte{0xc1, 0x05},
			n:      1,
			err:    ErrReservedBits,
		},
		{
			name:   "allowedReservedBit",
			policy: Policy{RejectReservedBits: true, AllowedRSV: RSV1Bit},
			b:      []byte{0xc1, 0x05},
			n:      2,
		},
		{
			name:   "disallowedWithAllowed",
			policy: Policy{RejectReservedBits: true, AllowedRSV: RSV1Bit},
			b:      []byte{0xe1, 0x05},
			n:      1,
			err:    ErrReservedBits,
		},
		{
			name:   "reservedOpcode",
			policy: Policy{RejectReservedOpcodes: true},
			b:      []byte{0x83, 0x00},
			n:      1,
			err:    ErrReservedOpcode,
		},
		{
			name:   "reservedControlOpcode",
			policy: Policy{RejectReservedOpcodes: true},
			b:      []byte{0x8f, 0x00},
			n:      1,
			err:    ErrReservedOpcode,
		},
		{
			name:   "fragmentedControl",
			policy: Policy{RejectControlViolations: true},
			b:      []byte{0x09, 0x00},
			n:      1,
			err:    ErrControlFrame,
		},
		{
			name:   "longControl",
			policy: Policy{RejectControlViolations: true},
			b:      []byte{0x89, 0x7e, 0x00, 0x7e},
			n:      4,
			err:    ErrControlFrame,
		},
		{
			name:   "control",
			policy: Policy{RejectControlViolations: true},
			b:      []byte{0x88, 0x7d},
			n:      2,
		},
		{
			name:   "nonMinimal16",
			policy: Policy{RequireMinimalLength: true},
			b:      []byte{0x82, 0x7e, 0x00, 0x7d, 0xaa},
			n:      4,
			err:    ErrNonMinimalLength,
		},
		{
			name:   "minimal16",
			policy: Policy{RequireMinimalLength: true},
			b:      []byte{0x82, 0x7e, 0x00, 0x7e},
			n:      4,
		},
		{
			name:   "nonMinimal64",
			policy: Policy{RequireMinimalLength: true},
			b:      []byte{0x82, 0x7f, 0, 0, 0, 0, 0, 0, 0xff, 0xff},
			n:      10,
			err:    ErrNonMinimalLength,
		},
		{
			name:   "msb64",
			policy: Policy{RequireMinimalLength: true},
			b:      []byte{0x82, 0x7f, 0x80, 0, 0, 0, 0, 0, 0, 0},
			n:      10,
			err:    ErrNonMinimalLength,
		},
		{
			name:   "tooLarge",
			policy: Policy{MaxPayloadLength: 4},
			b:      []byte{0x81, 0x85, 1, 2, 3, 4},
			n:      2,
			err:    ErrPayloadTooLarge,
		},
		{
			name:   "atLimit",
			policy: Policy{MaxPayloadLength: 5},
			b:      []byte{0x81, 0x85, 1, 2, 3, 4},
			n:      6,
		},
		{
			name: "zeroValueAcceptsEverything",
			b:    []byte{0x7b, 0xfe, 0x00, 0x01, 1, 2, 3, 4},
			n:    8,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			p := NewParser(&tc.policy)
			n, err := p.Execute(tc.b)
			assert.Equal(t, "consumed", tc.n, n)
			if tc.err == nil {
				assert.Success(t, err)
				assert.Equal(t, "parsed", true, p.HeaderParsed())
				assert.Success(t, tc.policy.Check(p.Descriptor()))
				return
			}

			assert.ErrorIs(t, tc.err, err)
			assert.Equal(t, "parsed", false, p.HeaderParsed())

			// Byte at a time reports the error on the same byte.
			p.Reset()
			total := 0
			for _, c := range tc.b {
				n, err = p.Execute([]byte{c})
				total += n
				if err != nil {
					break
				}
			}
			assert.ErrorIs(t, tc.err, err)
			assert.Equal(t, "consumed bytewise", tc.n, total)
		})
	}
}

func TestPolicyCheck(t *testing.T) {
	t.Parallel()

	p := Policy{
		RejectReservedOpcodes:   true,
		RejectControlViolations: true,
		MaxPayloadLength:        1 << 20,
	}

	assert.Success(t, p.Check(NewDescriptor(true, OpText, 1<<20)))
	assert.ErrorIs(t, ErrPayloadTooLarge, p.Check(NewDescriptor(true, OpText, 1<<20+1)))
	assert.ErrorIs(t, ErrReservedOpcode, p.Check(NewDescriptor(true, Opcode(4), 0)))
	assert.ErrorIs(t, ErrControlFrame, p.Check(NewDescriptor(false, OpClose, 2)))
	assert.ErrorIs(t, ErrControlFrame, p.Check(NewDescriptor(true, OpPong, 126)))
}
