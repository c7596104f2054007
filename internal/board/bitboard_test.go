package board

import "testing"

func TestShiftNoWrap(t *testing.T) {
	tests := []struct {
		name string
		bb   Bitboard
		d    Direction
		want Bitboard
	}{
		{"east off h-file", FileH, East, Empty},
		{"west off a-file", FileA, West, Empty},
		{"north off rank 8", Rank8, North, Empty},
		{"south off rank 1", Rank1, South, Empty},
		{"north-east from a1", SquareBB(A1), NorthEast, SquareBB(B2)},
		{"south-west from a1", SquareBB(A1), SouthWest, Empty},
		{"knight g1 east-north-east", SquareBB(G1), EastNorthEast, Empty},
		{"knight b1 west-north-west", SquareBB(B1), WestNorthWest, Empty},
		{"knight g1 north-north-east", SquareBB(G1), NorthNorthEast, SquareBB(H3)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bb.Shift(tc.d); got != tc.want {
				t.Errorf("Shift = %#x, want %#x", uint64(got), uint64(tc.want))
			}
		})
	}
}

func TestNorthSouthOf(t *testing.T) {
	for sq := A1; sq <= H8; sq++ {
		north, south := NorthOf(sq), SouthOf(sq)
		if north&south != 0 || north|south|SquareBB(sq) != Universe {
			t.Fatalf("NorthOf/SouthOf(%v) do not partition the board", sq)
		}
		if north.PopCount() != 63-int(sq) {
			t.Errorf("NorthOf(%v) has %d squares", sq, north.PopCount())
		}
	}
}

func TestBitIteration(t *testing.T) {
	bb := SquareBB(C3) | SquareBB(E4) | SquareBB(H8)
	if bb.LSB() != C3 || bb.MSB() != H8 {
		t.Errorf("LSB/MSB = %v/%v", bb.LSB(), bb.MSB())
	}
	if !bb.Several() || SquareBB(E4).Several() {
		t.Error("Several is wrong")
	}
	got := bb.Squares()
	if len(got) != 3 || got[0] != C3 || got[1] != E4 || got[2] != H8 {
		t.Errorf("Squares = %v", got)
	}
	if Empty.LSB() != NoSquare || Empty.MSB() != NoSquare {
		t.Error("empty bitboard should give NoSquare")
	}
}

func TestParseSquare(t *testing.T) {
	for sq := A1; sq <= H8; sq++ {
		got, err := ParseSquare(sq.String())
		if err != nil || got != sq {
			t.Errorf("ParseSquare(%q) = %v, %v", sq.String(), got, err)
		}
	}
	for _, bad := range []string{"", "a", "i1", "a9", "e44"} {
		if _, err := ParseSquare(bad); err == nil {
			t.Errorf("ParseSquare(%q) should fail", bad)
		}
	}
}
