package board

import "testing"

func TestMoveEncoding(t *testing.T) {
	tests := []struct {
		m         Move
		from, to  Square
		uci       string
		capture   bool
		promotion PieceType
	}{
		{NewMove(E2, E4, DoublePawnPush), E2, E4, "e2e4", false, NoPieceType},
		{NewMove(E1, G1, KingCastle), E1, G1, "e1g1", false, NoPieceType},
		{NewMove(D5, E6, EnPassant), D5, E6, "d5e6", true, NoPieceType},
		{NewMove(B7, B8, PromotionFlag(Queen, false)), B7, B8, "b7b8q", false, Queen},
		{NewMove(B7, A8, PromotionFlag(Knight, true)), B7, A8, "b7a8n", true, Knight},
		{NewMove(G2, H1, PromotionFlag(Rook, true)), G2, H1, "g2h1r", true, Rook},
	}
	for _, tc := range tests {
		t.Run(tc.uci, func(t *testing.T) {
			if tc.m.From() != tc.from || tc.m.To() != tc.to {
				t.Errorf("squares = %v%v", tc.m.From(), tc.m.To())
			}
			if tc.m.String() != tc.uci {
				t.Errorf("String = %q, want %q", tc.m.String(), tc.uci)
			}
			if tc.m.IsCapture() != tc.capture {
				t.Errorf("IsCapture = %v", tc.m.IsCapture())
			}
			if tc.m.Promotion() != tc.promotion {
				t.Errorf("Promotion = %v, want %v", tc.m.Promotion(), tc.promotion)
			}
		})
	}
}

func TestMoveFlagClasses(t *testing.T) {
	for f := MoveFlag(0); f < 16; f++ {
		if f == 6 || f == 7 {
			continue // unused
		}
		m := NewMove(A2, A3, f)
		if m.IsQuiet() == (m.IsCapture() || m.IsPromotion()) {
			t.Errorf("flag %v: IsQuiet disagrees with capture/promotion bits", f)
		}
		if m.IsCastling() != (f == KingCastle || f == QueenCastle) {
			t.Errorf("flag %v: IsCastling = %v", f, m.IsCastling())
		}
	}
}

// Every move that can appear in one position must map to its own index.
// Enumerate all pseudo-geometric moves: any from/to pair without
// promotion, plus every pawn promotion shape for both colors.
func TestMoveIndexUnique(t *testing.T) {
	seen := make(map[int]Move)
	add := func(m Move) {
		idx := m.Index()
		if idx < 0 || idx >= MoveIndexCount {
			t.Fatalf("%v: index %d out of range", m, idx)
		}
		if prev, ok := seen[idx]; ok {
			t.Fatalf("%v and %v share index %d", prev, m, idx)
		}
		seen[idx] = m
	}

	for from := A1; from <= H8; from++ {
		for to := A1; to <= H8; to++ {
			if from != to {
				add(NewMove(from, to, Quiet))
			}
		}
	}

	// Promotions of one side to move: white from rank 7 in one position,
	// black from rank 2 in another. Check each color separately.
	for _, c := range []Color{White, Black} {
		promo := map[int]Move{}
		for file := File(0); file < 8; file++ {
			from := NewSquare(file, 6)
			if c == Black {
				from = NewSquare(file, 1)
			}
			caps := PawnCaptures(c)
			targets := append([]Direction{PawnPush(c)}, caps[:]...)
			for _, d := range targets {
				to := SquareBB(from).Shift(d)
				if to == 0 {
					continue
				}
				for _, pt := range PromotionTypes {
					m := NewMove(from, to.LSB(), PromotionFlag(pt, d != PawnPush(c)))
					idx := m.Index()
					if idx < 4096 || idx >= MoveIndexCount {
						t.Fatalf("%v: promotion index %d out of range", m, idx)
					}
					if prev, ok := promo[idx]; ok {
						t.Fatalf("%v and %v share index %d", prev, m, idx)
					}
					promo[idx] = m
				}
			}
		}
		// 8 pushes + 14 captures, four pieces each
		if len(promo) != 88 {
			t.Errorf("%v: %d promotion indices, want 88", c, len(promo))
		}
	}
}

func TestCastlingRightsWithout(t *testing.T) {
	tests := []struct {
		from, to Square
		want     CastlingRights
	}{
		{E1, E2, BlackKingSideCastle | BlackQueenSideCastle},
		{H1, H5, WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle},
		{B2, A8, WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle},
		{D4, D5, AllCastling},
	}
	for _, tc := range tests {
		if got := AllCastling.Without(tc.from, tc.to); got != tc.want {
			t.Errorf("Without(%v, %v) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestMoveList(t *testing.T) {
	ml := NewMoveList()
	ml.Add(NewMove(E2, E4, DoublePawnPush))
	ml.Add(NewMove(G1, F3, Quiet))
	if ml.Len() != 2 || !ml.Contains(NewMove(G1, F3, Quiet)) {
		t.Errorf("unexpected list %v", ml.Slice())
	}
	ml.Clear()
	if ml.Len() != 0 {
		t.Error("Clear did not empty the list")
	}
}
