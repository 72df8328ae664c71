package board_test

import (
	"math/rand"
	"testing"

	. "goshapes/internal/domain/board"
)

type stone struct {
	sign Sign
	v    Vertex
}

func play(b *Board, stones ...stone) *Board {
	for _, s := range stones {
		b = b.MakeMove(s.sign, s.v)
	}
	return b
}

func TestMakeMoveCapture(t *testing.T) {
	b := play(mustSquare(t, 19),
		stone{White, Vertex{0, 0}},
		stone{Black, Vertex{1, 0}},
	)
	if b.Get(Vertex{0, 0}) != White {
		t.Fatal("white stone captured too early")
	}

	b = b.MakeMove(Black, Vertex{0, 1})
	if b.Get(Vertex{0, 0}) != Empty {
		t.Errorf("white stone at corner still on board:\n%s", b)
	}
	if b.Captures(Black) != 1 || b.Captures(White) != 0 {
		t.Errorf("captures = %d/%d, want 1/0", b.Captures(Black), b.Captures(White))
	}
	if !b.IsValid() {
		t.Error("position after capture is invalid")
	}
}

func TestMakeMoveSuicide(t *testing.T) {
	b := play(mustSquare(t, 9),
		stone{White, Vertex{1, 0}},
		stone{White, Vertex{0, 1}},
		stone{Black, Vertex{0, 0}},
	)

	if b.Get(Vertex{0, 0}) != Empty {
		t.Errorf("suicide stone left on board:\n%s", b)
	}
	if b.Captures(White) != 1 || b.Captures(Black) != 0 {
		t.Errorf("captures = %d/%d, want 0/1", b.Captures(Black), b.Captures(White))
	}
}

func TestMakeMoveSuicideOfChain(t *testing.T) {
	b := play(mustSquare(t, 9),
		stone{Black, Vertex{0, 0}},
		stone{White, Vertex{2, 0}},
		stone{White, Vertex{1, 1}},
		stone{White, Vertex{0, 1}},
		stone{Black, Vertex{1, 0}},
	)

	if b.Get(Vertex{0, 0}) != Empty || b.Get(Vertex{1, 0}) != Empty {
		t.Errorf("suicided chain left on board:\n%s", b)
	}
	if b.Captures(White) != 2 {
		t.Errorf("white captures = %d, want 2", b.Captures(White))
	}
}

func TestMakeMoveCapturesBeforeSuicide(t *testing.T) {
	// ко: чёрный камень в (3,2) без свобод, но снимает белый (2,2)
	b := mustSquare(t, 5).Setup(map[Vertex]Sign{
		{1, 2}: Black, {2, 1}: Black, {2, 3}: Black,
		{2, 2}: White, {4, 2}: White, {3, 1}: White, {3, 3}: White,
	})

	next := b.MakeMove(Black, Vertex{3, 2})
	if next.Get(Vertex{3, 2}) != Black {
		t.Fatalf("capturing stone was removed:\n%s", next)
	}
	if next.Get(Vertex{2, 2}) != Empty {
		t.Errorf("white stone not captured:\n%s", next)
	}
	if next.Captures(Black) != 1 || next.Captures(White) != 0 {
		t.Errorf("captures = %d/%d, want 1/0", next.Captures(Black), next.Captures(White))
	}
	if libs := next.Liberties(Vertex{3, 2}); len(libs) != 1 || libs[0] != (Vertex{2, 2}) {
		t.Errorf("liberties = %v, want [{2 2}]", libs)
	}
}

func TestMakeMoveMultipleCaptures(t *testing.T) {
	b := mustSquare(t, 5).Setup(map[Vertex]Sign{
		{0, 0}: White, {2, 0}: White,
		{0, 1}: Black, {2, 1}: Black, {3, 0}: Black,
	})

	next := b.MakeMove(Black, Vertex{1, 0})
	if next.Get(Vertex{0, 0}) != Empty || next.Get(Vertex{2, 0}) != Empty {
		t.Errorf("both white stones must be captured:\n%s", next)
	}
	if next.Captures(Black) != 2 {
		t.Errorf("black captures = %d, want 2", next.Captures(Black))
	}
}

func TestMakeMoveNoop(t *testing.T) {
	b := mustSquare(t, 9).MakeMove(Black, Vertex{4, 4})

	tests := []struct {
		name string
		sign Sign
		v    Vertex
	}{
		{name: "empty sign", sign: Empty, v: Vertex{3, 3}},
		{name: "pass", sign: White, v: Pass},
		{name: "off board", sign: White, v: Vertex{9, 0}},
		{name: "occupied", sign: White, v: Vertex{4, 4}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			next := b.MakeMove(test.sign, test.v)
			if next == b {
				t.Fatal("MakeMove must return a copy")
			}
			if diff := b.Diff(next); len(diff) != 0 {
				t.Errorf("board changed at %v", diff)
			}
		})
	}
}

func TestMakeMoveNormalizesSign(t *testing.T) {
	b := mustSquare(t, 9)
	if got := b.MakeMove(Sign(5), Vertex{1, 1}).Get(Vertex{1, 1}); got != Black {
		t.Errorf("positive sign placed %v, want Black", got)
	}
	if got := b.MakeMove(Sign(-2), Vertex{1, 1}).Get(Vertex{1, 1}); got != White {
		t.Errorf("negative sign placed %v, want White", got)
	}
}

func TestMakeMoveDoesNotMutate(t *testing.T) {
	b := mustSquare(t, 5).Setup(map[Vertex]Sign{{0, 0}: White, {1, 0}: Black})
	before := b.Clone()

	_ = b.MakeMove(Black, Vertex{0, 1})

	if diff := before.Diff(b); len(diff) != 0 {
		t.Errorf("source board mutated at %v", diff)
	}
	if b.Captures(Black) != 0 {
		t.Error("source captures mutated")
	}
}

func TestRandomGameKeepsInvariants(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))

	for _, size := range []int{5, 9, 13} {
		b := mustSquare(t, size)
		sign := Black

		for i := 0; i < 600; i++ {
			v := Vertex{rnd.Intn(size), rnd.Intn(size)}
			next := b.MakeMove(sign, v)

			if !next.IsValid() {
				t.Fatalf("move %d: %v at %v left a dead chain:\n%s", i, sign, v, next)
			}
			if next.Captures(Black) < b.Captures(Black) || next.Captures(White) < b.Captures(White) {
				t.Fatalf("move %d: captures decreased", i)
			}

			b = next
			sign = sign.Opponent()
		}
	}
}

func TestIsValid(t *testing.T) {
	b := mustSquare(t, 5)
	if !b.IsValid() {
		t.Error("empty board must be valid")
	}

	dead := b.Setup(map[Vertex]Sign{{0, 0}: White, {1, 0}: Black, {0, 1}: Black})
	if dead.IsValid() {
		t.Error("surrounded white stone must make the board invalid")
	}
}
