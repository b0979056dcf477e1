package procrun

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Verdict int

const (
	ALLOW Verdict = iota
	DENY
)

// Digest is anything WithRule accepts as a SHA-256 digest: a [32]byte, a
// 64 character hex string, or sha256sum formatted text as string, []byte or
// io.Reader.
type Digest any

var ErrDenied = errors.New("procrun: execution denied by policy")

type PolicyError struct {
	Verdict Verdict
	Digest  string
	Command string
}

func (e *PolicyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("procrun: %s digest %s for %q", e.Verdict.String(), e.Digest, e.Command)
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrDenied
}

func (v Verdict) String() string {
	switch v {
	case ALLOW:
		return "allow"
	case DENY:
		return "deny"
	default:
		return fmt.Sprintf("verdict(%d)", v)
	}
}

// CommandDigest returns the hex SHA-256 digest of an expanded command, the
// value policies are keyed on.
func CommandDigest(expanded string) string {
	sum := sha256.Sum256([]byte(expanded))
	return hex.EncodeToString(sum[:])
}

type policyKey struct{}

type executionPolicy struct {
	defaultVerdict Verdict
	rules          map[[32]byte]Verdict
}

func (p *executionPolicy) clone() *executionPolicy {
	clone := &executionPolicy{defaultVerdict: ALLOW, rules: make(map[[32]byte]Verdict)}
	if p == nil {
		return clone
	}
	clone.defaultVerdict = p.defaultVerdict
	for k, v := range p.rules {
		clone.rules[k] = v
	}
	return clone
}

func policyFromContext(ctx context.Context) *executionPolicy {
	if ctx == nil {
		return nil
	}
	if existing, ok := ctx.Value(policyKey{}).(*executionPolicy); ok {
		return existing
	}
	return nil
}

// WithPolicy returns a derived context that sets the default verdict
// consulted when no explicit rule matches the digest of an expanded command.
// Without a policy in the context every command is allowed.
//
//	ctx := procrun.WithPolicy(context.Background(), procrun.DENY)
//	ctx = procrun.WithCommands(ctx, procrun.ALLOW, "rails server -p 5000")
func WithPolicy(ctx context.Context, verdict Verdict) context.Context {
	policy := policyFromContext(ctx).clone()
	policy.defaultVerdict = verdict
	return context.WithValue(ctx, policyKey{}, policy)
}

// WithCommands adds rules for the digests of the given expanded commands.
func WithCommands(ctx context.Context, rule Verdict, expanded ...string) context.Context {
	digests := make([]Digest, 0, len(expanded))
	for _, c := range expanded {
		digests = append(digests, sha256.Sum256([]byte(c)))
	}
	return WithRule(ctx, rule, digests...)
}

// WithRule returns a derived context containing explicit allow/deny entries
// for SHA-256 digests. WithRule must succeed; invalid input panics. Use
// WithRuleCatchError for digests read from user supplied files.
func WithRule(ctx context.Context, rule Verdict, sha256Digests ...Digest) context.Context {
	ctx, err := WithRuleCatchError(ctx, rule, sha256Digests...)
	if err != nil {
		panic(err)
	}
	return ctx
}

// WithRuleCatchError mirrors WithRule but returns an error instead of
// panicking.
func WithRuleCatchError(ctx context.Context, rule Verdict, sha256Digests ...Digest) (context.Context, error) {
	if rule != ALLOW && rule != DENY {
		return ctx, fmt.Errorf("unsupported verdict %d", rule)
	}
	if len(sha256Digests) == 0 {
		return ctx, nil
	}
	var digests [][32]byte
	for _, v := range sha256Digests {
		d, err := parseDigest(v)
		if err != nil {
			return ctx, err
		}
		digests = append(digests, d...)
	}
	policy := policyFromContext(ctx).clone()
	for _, d := range digests {
		policy.rules[d] = rule
	}
	return context.WithValue(ctx, policyKey{}, policy), nil
}

func parseDigest(v Digest) ([][32]byte, error) {
	switch d := v.(type) {
	case nil:
		return nil, nil
	case [32]byte:
		return [][32]byte{d}, nil
	case string:
		return parseSums(strings.NewReader(d))
	case []byte:
		return parseSums(strings.NewReader(string(d)))
	case io.Reader:
		return parseSums(d)
	default:
		return nil, fmt.Errorf("unsupported checksum type %T", v)
	}
}

// parseSums reads one digest per line, optionally followed by a file name as
// printed by sha256sum. Blank lines and # comments are skipped.
func parseSums(r io.Reader) ([][32]byte, error) {
	var digests [][32]byte
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		field, _, _ := strings.Cut(line, " ")
		if len(field) != 2*sha256.Size {
			return nil, fmt.Errorf("invalid sha256 digest: %q", field)
		}
		b, err := hex.DecodeString(field)
		if err != nil {
			return nil, fmt.Errorf("decode sha256 digest: %w", err)
		}
		var digest [32]byte
		copy(digest[:], b)
		digests = append(digests, digest)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(digests) == 0 {
		return nil, fmt.Errorf("no sha256 digest found")
	}
	return digests, nil
}

// CheckPolicy returns a *PolicyError matching ErrDenied if the policy in ctx
// denies the expanded command.
func CheckPolicy(ctx context.Context, expanded string) error {
	policy := policyFromContext(ctx)
	if policy == nil {
		return nil
	}
	digest := sha256.Sum256([]byte(expanded))
	if policy.evaluate(digest) == DENY {
		return &PolicyError{Verdict: DENY, Digest: hex.EncodeToString(digest[:]), Command: expanded}
	}
	return nil
}

func (p *executionPolicy) evaluate(digest [32]byte) Verdict {
	if v, ok := p.rules[digest]; ok {
		return v
	}
	return p.defaultVerdict
}
