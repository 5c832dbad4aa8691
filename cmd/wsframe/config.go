package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"nhooyr.io/wsframe"
	"nhooyr.io/wsframe/internal/errd"
)

// policyConfig is the YAML form of wsframe.Policy.
//
//	minimal_length: true
//	reserved_opcodes: true
//	reserved_bits: true
//	allowed_rsv: [1]
//	control_frames: true
//	max_payload: 16777216
type policyConfig struct {
	MinimalLength   bool   `yaml:"minimal_length"`
	ReservedOpcodes bool   `yaml:"reserved_opcodes"`
	ReservedBits    bool   `yaml:"reserved_bits"`
	AllowedRSV      []int  `yaml:"allowed_rsv"`
	ControlFrames   bool   `yaml:"control_frames"`
	MaxPayload      uint64 `yaml:"max_payload"`
}

func (c policyConfig) policy() (*wsframe.Policy, error) {
	p := &wsframe.Policy{
		RequireMinimalLength:    c.MinimalLength,
		RejectReservedOpcodes:   c.ReservedOpcodes,
		RejectReservedBits:      c.ReservedBits,
		RejectControlViolations: c.ControlFrames,
		MaxPayloadLength:        c.MaxPayload,
	}
	for _, n := range c.AllowedRSV {
		switch n {
		case 1:
			p.AllowedRSV |= wsframe.RSV1Bit
		case 2:
			p.AllowedRSV |= wsframe.RSV2Bit
		case 3:
			p.AllowedRSV |= wsframe.RSV3Bit
		default:
			return nil, fmt.Errorf("allowed_rsv: no RSV%v bit", n)
		}
	}
	return p, nil
}

// loadPolicy reads the policy at path. An empty path yields a nil policy
// which accepts every header.
func loadPolicy(path string) (_ *wsframe.Policy, err error) {
	if path == "" {
		return nil, nil
	}
	defer errd.Wrap(&err, "failed to load policy from %v", path)

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parsePolicy(b)
}

func parsePolicy(b []byte) (*wsframe.Policy, error) {
	var c policyConfig
	d := yaml.NewDecoder(bytes.NewReader(b))
	d.KnownFields(true)
	err := d.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return c.policy()
}
