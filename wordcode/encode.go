package wordcode

// List flags (WC_LIST sub-kind byte). Z_END may be ORed onto either
// Z_SYNC or Z_ASYNC; Z_SIMPLE is set by the simplification pass.
const (
	ZSync    uint8 = 1 << 0
	ZAsync   uint8 = 1 << 1
	ZDisown  uint8 = 1 << 2
	ZEnd     uint8 = 1 << 3
	ZSimple  uint8 = 1 << 4
)

// Sublist connective type, packed in the low 2 bits of the SUBLIST flags
// byte; COPROC/NOT/SIMPLE occupy the next three bits.
const (
	SublistEnd uint8 = iota
	SublistOr
	SublistAnd
)

const (
	SublistCoproc uint8 = 1 << 2
	SublistNot    uint8 = 1 << 3
	SublistSimple uint8 = 1 << 4
)

// SublistType extracts the connective (END/OR/AND) from a flags byte.
func SublistType(flags uint8) uint8 { return flags & 0x3 }

// SublistFlags extracts the COPROC/NOT/SIMPLE bits from a flags byte.
func SublistFlags(flags uint8) uint8 { return flags &^ 0x3 }

// Pipe end-marker, packed as bit 0 of the PIPE flags byte. Data carries
// the 1-based line number (0 if unknown), matching the reference's
// WC_PIPE_LINENO convention.
const (
	PipeEnd uint8 = 0
	PipeMid uint8 = 1
)

// Redirection sub-kinds (flags byte of a REDIR word).
const (
	RedirRead uint8 = iota
	RedirWrite
	RedirAppend
	RedirWriteNow
	RedirAppendNow
	RedirReadWrite
	RedirHeredoc
	RedirHeredocDash
	RedirHereString
	RedirDupRead  // <&
	RedirDupWrite // >&
	RedirMergeIn  // <&-style merge
	RedirMergeOut // 2>&1, and the synthetic |& redirection
	RedirClose
	RedirMoveIn
	RedirMoveOut
)

// Assign sub-kinds (flags byte of an ASSIGN word); data carries the
// element count for arrays.
const (
	AssignScalar uint8 = iota
	AssignArray
)

// Timed sub-kinds (flags byte of a TIMED word).
const (
	TimedEmpty uint8 = iota
	TimedPipe
)

// While sub-kinds.
const (
	WhileWhile uint8 = iota
	WhileUntil
)

// For/Select sub-kinds: iteration source.
const (
	ForPParam uint8 = iota // over positional parameters
	ForList                // over an inline wordlist
	ForCond                // arithmetic ((init; cond; step))
)

// Case branch sub-kinds.
const (
	CaseHead uint8 = iota
	CaseOr        // ;;
	CaseAnd       // ;&
)

// If-chain link sub-kinds.
const (
	IfHead uint8 = iota
	IfIf
	IfElif
	IfElse
)

// Conditional-expression sub-kinds (COND flags byte).
const (
	CondAnd uint8 = iota
	CondOr
	CondNot
	CondMod   // arbitrary-arity modular test: -NAME STRING...
	CondModI  // infix modular test: STRING -NAME STRING
	CondStrEq
	CondStrNEq
	CondUnary
	CondBinary
)

// List builds a WC_LIST header word.
func List(flags uint8, skip uint32) Word { return Make(KList, flags, skip) }

// Sublist builds a WC_SUBLIST header word.
func Sublist(connective, flags uint8, skip uint32) Word {
	return Make(KSublist, (flags&^0x3)|(connective&0x3), skip)
}

// Pipe builds a WC_PIPE header word; line is clamped to Word capacity.
func Pipe(end uint8, line int) Word {
	l := uint32(0)
	if line > 0 {
		l = uint32(line)
	}
	return Make(KPipe, end, l)
}

// PipeLineno rewrites a PIPE word into the bare line-number slot used once
// a pipeline has been collapsed by simplification.
func PipeLineno(w Word) Word { return Raw(w.Data()) }

// Redir builds a WC_REDIR opcode word; the caller follows it with an fd
// word (Raw) and a string-reference word, for exactly 3 words total.
func Redir(kind uint8) Word { return Make(KRedir, kind, 0) }

// Assign builds a WC_ASSIGN header word.
func Assign(kind uint8, count uint32) Word { return Make(KAssign, kind, count) }

// Simple builds a WC_SIMPLE header word; argc includes the command name.
func Simple(argc uint32) Word { return Make(KSimple, 0, argc) }

// Subsh builds a bare WC_SUBSH header word (no data).
func Subsh() Word { return Make(KSubsh, 0, 0) }

// Cursh builds a bare WC_CURSH header word (no data).
func Cursh() Word { return Make(KCursh, 0, 0) }

// Timed builds a WC_TIMED header word.
func Timed(kind uint8) Word { return Make(KTimed, kind, 0) }

// Funcdef builds a WC_FUNCDEF header word.
func Funcdef(skip uint32) Word { return Make(KFuncdef, 0, skip) }

// For builds a WC_FOR header word.
func For(kind uint8, skip uint32) Word { return Make(KFor, kind, skip) }

// Select builds a WC_SELECT header word.
func Select(kind uint8, skip uint32) Word { return Make(KSelect, kind, skip) }

// While builds a WC_WHILE header word.
func While(kind uint8, skip uint32) Word { return Make(KWhile, kind, skip) }

// Repeat builds a WC_REPEAT header word.
func Repeat(skip uint32) Word { return Make(KRepeat, 0, skip) }

// Case builds a WC_CASE link word.
func Case(kind uint8, skip uint32) Word { return Make(KCase, kind, skip) }

// If builds a WC_IF link word.
func If(kind uint8, skip uint32) Word { return Make(KIf, kind, skip) }

// Cond builds a WC_COND header word.
func Cond(kind uint8, skip uint32) Word { return Make(KCond, kind, skip) }

// Arith builds a bare WC_ARITH header word; followed by one string.
func Arith() Word { return Make(KArith, 0, 0) }

// Autofn builds the WC_AUTOFN marker used only by the autoload builtin.
func Autofn() Word { return Make(KAutofn, 0, 0) }
