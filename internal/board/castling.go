package board

// CastlingRights is a 4-bit set of the castling options still available.
type CastlingRights uint8

// Bits in FEN order.
const (
	WhiteKingSideCastle CastlingRights = 1 << iota
	WhiteQueenSideCastle
	BlackKingSideCastle
	BlackQueenSideCastle

	NoCastling  CastlingRights = 0
	AllCastling                = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String formats the rights as the FEN castling field.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var buf [4]byte
	n := 0
	for i, c := range []byte("KQkq") {
		if cr&(1<<i) != 0 {
			buf[n] = c
			n++
		}
	}
	return string(buf[:n])
}

// Castle describes the fixed squares of one castling option.
type Castle struct {
	Right    CastlingRights
	KingFrom Square
	KingTo   Square
	RookFrom Square
	RookTo   Square
	Transit  Square   // square the king crosses
	Path     Bitboard // squares between king and rook that must be empty
	Flag     MoveFlag
}

// Castles holds both castling options per color, king side first.
var Castles = [2][2]Castle{
	White: {
		{WhiteKingSideCastle, E1, G1, H1, F1, F1, SquareBB(F1) | SquareBB(G1), KingCastle},
		{WhiteQueenSideCastle, E1, C1, A1, D1, D1, SquareBB(B1) | SquareBB(C1) | SquareBB(D1), QueenCastle},
	},
	Black: {
		{BlackKingSideCastle, E8, G8, H8, F8, F8, SquareBB(F8) | SquareBB(G8), KingCastle},
		{BlackQueenSideCastle, E8, C8, A8, D8, D8, SquareBB(B8) | SquareBB(C8) | SquareBB(D8), QueenCastle},
	},
}

// castlingMask lists the rights lost when a piece leaves or lands on a square.
var castlingMask = func() [64]CastlingRights {
	var m [64]CastlingRights
	for c := range Castles {
		for _, cs := range Castles[c] {
			m[cs.KingFrom] |= cs.Right
			m[cs.RookFrom] |= cs.Right
		}
	}
	return m
}()

// Without returns the rights left after a move touching from and to.
func (cr CastlingRights) Without(from, to Square) CastlingRights {
	return cr &^ (castlingMask[from] | castlingMask[to])
}
