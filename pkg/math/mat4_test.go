package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	result := m.Mul(Identity())

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	got := m.TransformPoint(Vec3{1, 2, 3})

	want := Vec3{11, 22, 33}
	if got != want {
		t.Errorf("TransformPoint: got %v, want %v", got, want)
	}
}

func TestScaleMirror(t *testing.T) {
	m := Scale(-1, -1, 1)
	got := m.TransformPoint(Vec3{3, 4, 5})

	want := Vec3{-3, -4, 5}
	if got != want {
		t.Errorf("mirror scale: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(math32.Pi / 2)
	got := m.TransformPoint(Vec3{1, 0, 0})

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if !near(got, Vec3{0, 0, -1}) {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestRotateAxisMatchesRotateZ(t *testing.T) {
	angle := Radians(30)
	a := RotateAxis(Vec3{0, 0, 2}, angle)
	b := RotateZ(angle)
	for i := range a {
		if abs(a[i]-b[i]) > 1e-6 {
			t.Fatalf("RotateAxis(z) element %d: got %f, want %f", i, a[i], b[i])
		}
	}
}

func TestRotateAxisZeroAxis(t *testing.T) {
	if RotateAxis(Vec3{}, 1) != Identity() {
		t.Error("zero axis should yield identity")
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math32.Pi/4, 1, 0.1, 100)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestPerspectiveDepthRange(t *testing.T) {
	m := Perspective(Radians(70), 1.5, 1, 10000)

	nearPt := m.TransformPoint(Vec3{0, 0, -1})
	farPt := m.TransformPoint(Vec3{0, 0, -10000})
	if abs(nearPt.Z+1) > 1e-4 {
		t.Errorf("near plane should map to -1, got %f", nearPt.Z)
	}
	if abs(farPt.Z-1) > 1e-3 {
		t.Errorf("far plane should map to 1, got %f", farPt.Z)
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{0, 0, 5}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})

	if got := m.TransformPoint(eye); !near(got, Vec3{}) {
		t.Errorf("eye should map to origin, got %v", got)
	}
	if got := m.TransformPoint(Vec3{}); !near(got, Vec3{0, 0, -5}) {
		t.Errorf("center should be in front of the camera, got %v", got)
	}
}

func TestInverse(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateX(0.3)).Mul(Scale(2, 2, 2))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("matrix should be invertible")
	}
	id := m.Mul(inv)
	for i, want := range Identity() {
		if abs(id[i]-want) > 1e-5 {
			t.Fatalf("M * M^-1 element %d: got %f, want %f", i, id[i], want)
		}
	}
}

func TestInverseSingular(t *testing.T) {
	inv, ok := Scale(0, 1, 1).Inverse()
	if ok {
		t.Error("singular matrix reported invertible")
	}
	if inv != Identity() {
		t.Error("singular inverse should be identity")
	}
}

func TestColumn(t *testing.T) {
	m := Translate(7, 8, 9)
	if got := m.Column(3); got != (Vec3{7, 8, 9}) {
		t.Errorf("Column(3) = %v, want (7, 8, 9)", got)
	}
}

func TestMat4IsFinite(t *testing.T) {
	m := Identity()
	if !m.IsFinite() {
		t.Error("identity should be finite")
	}
	m[3] = math32.NaN()
	if m.IsFinite() {
		t.Error("NaN element should not be finite")
	}
}

func near(a, b Vec3) bool {
	return abs(a.X-b.X) < 1e-4 && abs(a.Y-b.Y) < 1e-4 && abs(a.Z-b.Z) < 1e-4
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
