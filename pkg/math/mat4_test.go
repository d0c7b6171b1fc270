package math

import (
	"testing"

	"github.com/chewxy/math32"
)

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
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

	// Translation lives in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScaleTransformPoint(t *testing.T) {
	m := Scale(2, 3, 4)
	got := m.TransformPoint([3]float32{1, 1, 1})
	want := [3]float32{2, 3, 4}
	if got != want {
		t.Errorf("TransformPoint with scale: got %v, want %v", got, want)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(math32.Pi / 2)
	got := m.TransformPoint([3]float32{1, 0, 0})

	// 90 degree Y rotation sends (1,0,0) to (0,0,-1)
	if abs(got[0]) > 0.001 || abs(got[1]) > 0.001 || abs(got[2]+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", got)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(math32.Pi/4, 1.0, 0.1, 100.0)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero focal elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestOrthoMapsVolumeToNDC(t *testing.T) {
	m := Ortho(-2, 2, -2, 2, 0, 10)

	// Center of the volume maps to NDC origin in X/Y
	got := m.TransformPoint([3]float32{0, 0, -5})
	if abs(got[0]) > 0.001 || abs(got[1]) > 0.001 {
		t.Errorf("Ortho center: got %v, want XY at origin", got)
	}

	// Right edge maps to +1
	got = m.TransformPoint([3]float32{2, 0, -5})
	if abs(got[0]-1) > 0.001 {
		t.Errorf("Ortho right edge: got X=%f, want 1", got[0])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{3, 4, 5}
	m := LookAt(eye, Vec3{0, 0, 0}, Vec3{0, 1, 0})

	got := m.TransformVec3(eye)
	if got.Length() > 0.001 {
		t.Errorf("LookAt should map eye to origin, got %v", got)
	}
}

func TestInverseRoundTrip(t *testing.T) {
	m := Translate(1, 2, 3).Mul(RotateY(0.7)).Mul(Scale(2, 2, 2))
	r := m.Mul(m.Inverse())

	id := Identity()
	for i := 0; i < 16; i++ {
		if abs(r[i]-id[i]) > 0.0001 {
			t.Fatalf("M * M^-1 element %d: got %f, want %f", i, r[i], id[i])
		}
	}
}

func TestTranspose(t *testing.T) {
	m := Translate(1, 2, 3)
	tr := m.Transpose()

	if tr[3] != 1 || tr[7] != 2 || tr[11] != 3 {
		t.Errorf("Transpose should move translation to row 4: got %v", tr)
	}
	if tr.Transpose() != m {
		t.Error("double transpose should be identity operation")
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	// Under scale (2,1,1) a normal along X must shrink by 1/2 (before
	// renormalization), which the plain model matrix would get wrong.
	m := Scale(2, 1, 1)
	n := m.NormalMatrix()

	gotX := n[0]
	if abs(gotX-0.5) > 0.0001 {
		t.Errorf("NormalMatrix X scale: got %f, want 0.5", gotX)
	}
}

func TestNormalMatrixUniformRotation(t *testing.T) {
	// For a pure rotation the normal matrix equals the rotation itself.
	m := RotateY(0.9)
	n := m.NormalMatrix()
	r := m.Mat3x3()

	for i := 0; i < 9; i++ {
		if abs(n[i]-r[i]) > 0.0001 {
			t.Fatalf("NormalMatrix of rotation element %d: got %f, want %f", i, n[i], r[i])
		}
	}
}

func TestIsFinite(t *testing.T) {
	if !Identity().IsFinite() {
		t.Error("identity should be finite")
	}
	bad := Identity()
	bad[5] = math32.NaN()
	if bad.IsFinite() {
		t.Error("NaN matrix should not be finite")
	}
}

func TestQuatToMat4(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{0, 1, 0}, math32.Pi/2)
	m := q.ToMat4()
	want := RotateY(math32.Pi / 2)

	for i := 0; i < 16; i++ {
		if abs(m[i]-want[i]) > 0.001 {
			t.Fatalf("Quat.ToMat4 element %d: got %f, want %f", i, m[i], want[i])
		}
	}
}
