package ecdb

import "testing"

type sigPosition struct{}
type sigVelocity struct{}
type sigHealth struct{}

func TestSignatureOfIsOrderIndependent(t *testing.T) {
	position := FactoryNewComponent[sigPosition]("signature-test-position")
	velocity := FactoryNewComponent[sigVelocity]("signature-test-velocity")
	health := FactoryNewComponent[sigHealth]("signature-test-health")

	a := Of(position, velocity, health)
	b := Of(health, position, velocity)

	if !a.Eq(b) {
		t.Fatalf("expected signatures built from the same components in different orders to compare equal")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("expected matching hashes for equal signatures")
	}
}

func TestSignatureWithAndWithoutAreIdempotent(t *testing.T) {
	position := FactoryNewComponent[sigPosition]("signature-test-with-position")

	var s Signature
	s = s.With(position.ID())
	again := s.With(position.ID())
	if s.Len() != 1 || again.Len() != 1 {
		t.Fatalf("With should be idempotent, got lengths %d and %d", s.Len(), again.Len())
	}

	cleared := s.Without(position.ID())
	if cleared.IsSet(position.ID()) {
		t.Fatal("expected component cleared after Without")
	}
	if cleared.Without(position.ID()).Len() != 0 {
		t.Fatal("Without should be idempotent on an already-absent component")
	}
}

func TestSignatureSupersetAndDisjointChecks(t *testing.T) {
	position := FactoryNewComponent[sigPosition]("signature-test-superset-position")
	velocity := FactoryNewComponent[sigVelocity]("signature-test-superset-velocity")
	health := FactoryNewComponent[sigHealth]("signature-test-superset-health")

	full := Of(position, velocity)
	required := Of(position)

	if !full.IsSuperset(required) {
		t.Fatal("expected full to be a superset of required")
	}
	if full.IsSuperset(Of(health)) {
		t.Fatal("full should not be a superset of a signature it lacks")
	}
	if !full.HasNone(Of(health)) {
		t.Fatal("expected full and health-only signature to share no bits")
	}
	if full.HasNone(required) {
		t.Fatal("full and required share a bit, HasNone should be false")
	}
}
