package board

import "slices"

// Move packs a move into 16 bits: origin in bits 0-5, destination in bits
// 6-11 and a MoveFlag in bits 12-15.
type Move uint16

// MoveFlag is the 4-bit kind of a move. Value 4 marks captures and value 8
// marks promotions; the low two bits of a promotion name the new piece.
type MoveFlag uint8

const (
	Quiet              MoveFlag = 0
	DoublePawnPush     MoveFlag = 1
	KingCastle         MoveFlag = 2
	QueenCastle        MoveFlag = 3
	Capture            MoveFlag = 4
	EnPassant          MoveFlag = 5
	KnightPromotion    MoveFlag = 8
	BishopPromotion    MoveFlag = 9
	RookPromotion      MoveFlag = 10
	QueenPromotion     MoveFlag = 11
	KnightPromoCapture MoveFlag = 12
	BishopPromoCapture MoveFlag = 13
	RookPromoCapture   MoveFlag = 14
	QueenPromoCapture  MoveFlag = 15

	captureBit   MoveFlag = 4
	promotionBit MoveFlag = 8
)

// NoMove is the zero Move. It is never legal since from == to.
const NoMove Move = 0

// Dense move index space, see Move.Index.
const (
	promotionIndexBase = 4096
	promotionsPerFile  = 12
	MoveIndexCount     = promotionIndexBase + 8*promotionsPerFile
)

// NewMove packs a move.
func NewMove(from, to Square, flag MoveFlag) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// PromotionFlag returns the flag for promoting to pt, with or without a capture.
func PromotionFlag(pt PieceType, capture bool) MoveFlag {
	f := promotionBit | MoveFlag(pt-Knight)
	if capture {
		f |= captureBit
	}
	return f
}

func (m Move) From() Square {
	return Square(m & 0x3F)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

func (m Move) Flag() MoveFlag {
	return MoveFlag(m >> 12)
}

// IsCapture reports captures, en passant included.
func (m Move) IsCapture() bool {
	return m.Flag()&captureBit != 0
}

func (m Move) IsPromotion() bool {
	return m.Flag()&promotionBit != 0
}

// Promotion returns the piece promoted to, or NoPieceType.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return Knight + PieceType(m.Flag()&3)
}

func (m Move) IsCastling() bool {
	f := m.Flag()
	return f == KingCastle || f == QueenCastle
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == EnPassant
}

func (m Move) IsDoublePawnPush() bool {
	return m.Flag() == DoublePawnPush
}

// IsQuiet reports moves that neither capture nor promote. Castling and
// double pushes are quiet.
func (m Move) IsQuiet() bool {
	return m.Flag()&(captureBit|promotionBit) == 0
}

// Index maps the move into [0, MoveIndexCount). Non-promotions use their
// from/to bits directly. Promotions go above 4095: each origin file owns
// 12 consecutive slots, ordered by direction (toward the a-file, straight,
// toward the h-file) and then by promotion piece (N, B, R, Q). The range is
// wider than a 16-slot promotion block on purpose: 8 files of 12 shapes
// need 96 slots.
func (m Move) Index() int {
	if !m.IsPromotion() {
		return int(m & 0xFFF)
	}
	from, to := m.From(), m.To()
	dir := int(to.File()) - int(from.File()) + 1
	return promotionIndexBase + int(from.File())*promotionsPerFile + dir*4 + int(m.Flag()&3)
}

// String returns long algebraic notation as UCI uses it: "e2e4", "e7e8q",
// and "0000" for NoMove.
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}

	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// String returns a short name for the flag.
func (f MoveFlag) String() string {
	switch f {
	case Quiet:
		return "quiet"
	case DoublePawnPush:
		return "double-push"
	case KingCastle:
		return "O-O"
	case QueenCastle:
		return "O-O-O"
	case Capture:
		return "capture"
	case EnPassant:
		return "en-passant"
	}
	if f&promotionBit != 0 && f < 16 {
		s := "promote-" + string(PieceType(Knight+PieceType(f&3)).Char())
		if f&captureBit != 0 {
			s += "-capture"
		}
		return s
	}
	return "invalid"
}

// MaxMoves bounds the legal moves of any reachable position (218 is the
// known maximum).
const MaxMoves = 256

// MoveList is a fixed-capacity move buffer that never allocates.
type MoveList struct {
	moves [MaxMoves]Move
	count int
}

func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends m.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int {
	return ml.count
}

// Clear empties the list, keeping its storage.
func (ml *MoveList) Clear() {
	ml.count = 0
}

func (ml *MoveList) Contains(m Move) bool {
	return slices.Contains(ml.Slice(), m)
}

// Slice returns the moves. It aliases the list's storage.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}
