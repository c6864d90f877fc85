package ast

// Kind is one variant of the closed set of node kinds (spec §3). Adding a
// kind means updating every exhaustive switch over Kind in this repo —
// intentionally, since the hash serializer (internal/hash) and every index
// in internal/index must be updated in lockstep.
type Kind uint8

const (
	KindInvalid Kind = iota

	KindCompilationUnit
	KindModule
	KindImport
	KindValueDef
	KindTypeDef
	KindEffectDef
	KindHandlerDef
	KindInterface

	KindLambda
	KindApplication
	KindLet
	KindLetRec
	KindIf
	KindMatch
	KindDo
	KindWith
	KindPerform
	KindPipe
	KindRecord
	KindRecordAccess
	KindRecordUpdate

	KindPatternWildcard
	KindPatternLiteral
	KindPatternVariable
	KindPatternConstructor
	KindPatternRecord
	KindPatternCons
	KindPatternTuple

	KindLiteralInt
	KindLiteralFloat
	KindLiteralText
	KindLiteralBool
	KindLiteralUnit
	KindLiteralList
	KindLiteralTuple

	KindReferenceSymbolic
	KindReferenceHashAnchored

	kindSentinel // count marker, not a real kind
)

// tagByte is the hash serializer's closed tag table (spec §4.C: "Tag byte
// identifying the node kind (closed table)"). Kept separate from the Kind
// enum's own integer values so the on-disk/hash tag space can be audited
// independently of Go iota assignment order.
var tagByte = [kindSentinel]byte{
	KindCompilationUnit:       1,
	KindModule:                2,
	KindImport:                3,
	KindValueDef:              4,
	KindTypeDef:               5,
	KindEffectDef:             6,
	KindHandlerDef:            7,
	KindInterface:             8,
	KindLambda:                9,
	KindApplication:           10,
	KindLet:                   11,
	KindLetRec:                12,
	KindIf:                    13,
	KindMatch:                 14,
	KindDo:                    15,
	KindWith:                  16,
	KindPerform:               17,
	KindPipe:                  18,
	KindRecord:                19,
	KindRecordAccess:          20,
	KindRecordUpdate:          21,
	KindPatternWildcard:       22,
	KindPatternLiteral:        23,
	KindPatternVariable:       24,
	KindPatternConstructor:    25,
	KindPatternRecord:         26,
	KindPatternCons:           27,
	KindPatternTuple:          28,
	KindLiteralInt:            29,
	KindLiteralFloat:          30,
	KindLiteralText:           31,
	KindLiteralBool:           32,
	KindLiteralUnit:           33,
	KindLiteralList:           34,
	KindLiteralTuple:          35,
	KindReferenceSymbolic:     36,
	KindReferenceHashAnchored: 37,
}

// TagByte returns the canonical serialization tag for k, or 0 if k is not a
// recognized kind.
func (k Kind) TagByte() byte {
	if k <= KindInvalid || k >= kindSentinel {
		return 0
	}
	return tagByte[k]
}

var kindNames = [kindSentinel]string{
	KindInvalid:               "Invalid",
	KindCompilationUnit:       "CompilationUnit",
	KindModule:                "Module",
	KindImport:                "Import",
	KindValueDef:              "ValueDef",
	KindTypeDef:               "TypeDef",
	KindEffectDef:             "EffectDef",
	KindHandlerDef:            "HandlerDef",
	KindInterface:             "Interface",
	KindLambda:                "Lambda",
	KindApplication:           "Application",
	KindLet:                   "Let",
	KindLetRec:                "LetRec",
	KindIf:                    "If",
	KindMatch:                 "Match",
	KindDo:                    "Do",
	KindWith:                  "With",
	KindPerform:               "Perform",
	KindPipe:                  "Pipe",
	KindRecord:                "Record",
	KindRecordAccess:          "RecordAccess",
	KindRecordUpdate:          "RecordUpdate",
	KindPatternWildcard:       "PatternWildcard",
	KindPatternLiteral:        "PatternLiteral",
	KindPatternVariable:       "PatternVariable",
	KindPatternConstructor:    "PatternConstructor",
	KindPatternRecord:         "PatternRecord",
	KindPatternCons:           "PatternCons",
	KindPatternTuple:          "PatternTuple",
	KindLiteralInt:            "LiteralInt",
	KindLiteralFloat:          "LiteralFloat",
	KindLiteralText:           "LiteralText",
	KindLiteralBool:           "LiteralBool",
	KindLiteralUnit:           "LiteralUnit",
	KindLiteralList:           "LiteralList",
	KindLiteralTuple:          "LiteralTuple",
	KindReferenceSymbolic:     "ReferenceSymbolic",
	KindReferenceHashAnchored: "ReferenceHashAnchored",
}

func (k Kind) String() string {
	if k >= kindSentinel {
		return "Unknown"
	}
	return kindNames[k]
}

// IsDefinition reports whether a node of this kind can be a top-level
// Definition entry in the Namespace Store (spec §3 "Definition").
func (k Kind) IsDefinition() bool {
	switch k {
	case KindValueDef, KindTypeDef, KindEffectDef, KindHandlerDef, KindInterface:
		return true
	default:
		return false
	}
}

// IsPattern reports whether k is one of the Pattern variants.
func (k Kind) IsPattern() bool {
	switch k {
	case KindPatternWildcard, KindPatternLiteral, KindPatternVariable,
		KindPatternConstructor, KindPatternRecord, KindPatternCons, KindPatternTuple:
		return true
	default:
		return false
	}
}

// IsLiteral reports whether k is one of the Literal variants.
func (k Kind) IsLiteral() bool {
	switch k {
	case KindLiteralInt, KindLiteralFloat, KindLiteralText, KindLiteralBool,
		KindLiteralUnit, KindLiteralList, KindLiteralTuple:
		return true
	default:
		return false
	}
}
