package ast

import "github.com/ribbonlang/ribbon/internal/symbol"

// Digest is a 32-byte SHA-256 content hash. It is defined here (rather than
// in internal/hash) so a ReferenceHashAnchored node can embed one without
// internal/ast importing internal/hash (which itself must import internal/ast
// to walk nodes).
type Digest [32]byte

// LiteralKind enumerates the scalar literal variants a PatternLiteral can
// carry without needing its own child node.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitFloat
	LitText
	LitBool
)

// --- module-level structure ------------------------------------------------

type CompilationUnitPayload struct{}

func (CompilationUnitPayload) payloadKind() Kind { return KindCompilationUnit }

type ModulePayload struct {
	Name       symbol.ID
	Visibility Visibility
}

func (ModulePayload) payloadKind() Kind   { return KindModule }
func (p ModulePayload) DefSymbol() symbol.ID { return p.Name }

type ImportPayload struct {
	Path       symbol.ID
	Constraint string // SemVer constraint text, "" if unconstrained
	Selective  []symbol.ID
	Alias      symbol.ID // 0 if no rename
}

func (ImportPayload) payloadKind() Kind { return KindImport }

// --- definitions -------------------------------------------------------

type ValueDefPayload struct {
	Name           symbol.ID
	Visibility     Visibility
	Purity         Purity
	TypeAnnotation *TypeExpr // optional syntactic annotation; nil if absent
}

func (ValueDefPayload) payloadKind() Kind      { return KindValueDef }
func (p ValueDefPayload) DefSymbol() symbol.ID { return p.Name }

// TypeDefVariant discriminates a TypeDef's body (spec §3: "one of: alias,
// record, sum").
type TypeDefVariant uint8

const (
	TypeDefAlias TypeDefVariant = iota
	TypeDefRecord
	TypeDefSum
)

// RecordFieldDecl is a single named, typed field in a record type or a
// sum variant's field list.
type RecordFieldDecl struct {
	Name symbol.ID
	Type *TypeExpr
}

// VariantDecl is one constructor of a sum type.
type VariantDecl struct {
	Name   symbol.ID
	Fields []RecordFieldDecl
}

type TypeDefPayload struct {
	Name         symbol.ID
	TypeParams   []symbol.ID
	Variant      TypeDefVariant
	Alias        *TypeExpr         // TypeDefAlias
	RecordFields []RecordFieldDecl // TypeDefRecord
	Variants     []VariantDecl     // TypeDefSum
}

func (TypeDefPayload) payloadKind() Kind      { return KindTypeDef }
func (p TypeDefPayload) DefSymbol() symbol.ID { return p.Name }

// EffectOperation is one operation of an EffectDef: an input type list and
// a result type (spec §3: "set of operations each with input types and
// result type").
type EffectOperation struct {
	Name   symbol.ID
	Inputs []*TypeExpr
	Result *TypeExpr
}

type EffectDefPayload struct {
	Name       symbol.ID
	TypeParams []symbol.ID
	Operations []EffectOperation
}

func (EffectDefPayload) payloadKind() Kind      { return KindEffectDef }
func (p EffectDefPayload) DefSymbol() symbol.ID { return p.Name }

// HandlerDefPayload: "per-operation clauses with continuation binder"
// (spec §3). Each clause is represented as a Lambda child node whose last
// parameter is the continuation binder `k`; OpNames gives the clause
// order. If HasReturnClause, children[0] is a single-parameter Lambda for
// the `return` clause and clauses start at children[1].
type HandlerDefPayload struct {
	Name            symbol.ID
	EffectRef       symbol.ID
	OpNames         []symbol.ID
	HasReturnClause bool
}

func (HandlerDefPayload) payloadKind() Kind      { return KindHandlerDef }
func (p HandlerDefPayload) DefSymbol() symbol.ID { return p.Name }

// InterfaceFunc is a function declaration exposed by an Interface.
type InterfaceFunc struct {
	Name   symbol.ID
	Params []*TypeExpr
	Result *TypeExpr
}

// InterfaceResource is a resource declaration with a method set.
type InterfaceResource struct {
	Name    symbol.ID
	Methods []InterfaceFunc
}

type InterfacePayload struct {
	Name      string // versioned string, e.g. "wasi:io/streams@0.2.0"
	Functions []InterfaceFunc
	Resources []InterfaceResource
}

func (InterfacePayload) payloadKind() Kind { return KindInterface }

// --- expressions ---------------------------------------------------------

// LambdaPayload: ParamTypes is parallel to the leading pattern children
// (len(ParamTypes) == len(node.Children())-1); a nil entry means the
// parameter carries no syntactic type annotation. The final child is the
// body.
type LambdaPayload struct {
	ParamTypes []*TypeExpr
}

func (LambdaPayload) payloadKind() Kind { return KindLambda }

type ApplicationPayload struct{}

func (ApplicationPayload) payloadKind() Kind { return KindApplication }

// LetPayload: BindingCount bindings are flattened as (pattern, expr) pairs
// at the front of Children, followed by the body as the final child.
type LetPayload struct {
	BindingCount int
}

func (LetPayload) payloadKind() Kind { return KindLet }

type LetRecPayload struct {
	BindingCount int
}

func (LetRecPayload) payloadKind() Kind { return KindLetRec }

type IfPayload struct{}

func (IfPayload) payloadKind() Kind { return KindIf }

// MatchPayload: Children = [scrutinee, then ArmCount groups of
// (pattern, guard-or-nil, body)].
type MatchPayload struct {
	ArmCount int
}

func (MatchPayload) payloadKind() Kind { return KindMatch }

// DoStmtKind discriminates a Do block's statement forms (spec §3: "bind
// p <- e, let, expression").
type DoStmtKind uint8

const (
	DoBind DoStmtKind = iota
	DoLet
	DoExpr
)

// DoPayload: Children are StmtKinds-many (pattern-or-nil, expr) pairs, in
// source order. A DoExpr statement has a nil pattern slot.
type DoPayload struct {
	StmtKinds []DoStmtKind
}

func (DoPayload) payloadKind() Kind { return KindDo }

// WithPayload: Children = [HandlerCount handler expressions, then body].
type WithPayload struct {
	HandlerCount int
}

func (WithPayload) payloadKind() Kind { return KindWith }

type PerformPayload struct {
	EffectRef symbol.ID
	Operation symbol.ID
}

func (PerformPayload) payloadKind() Kind { return KindPerform }

type PipePayload struct{}

func (PipePayload) payloadKind() Kind { return KindPipe }

// RecordPayload: Children are the field value expressions, parallel to
// FieldNames, in source order.
type RecordPayload struct {
	FieldNames []symbol.ID
}

func (RecordPayload) payloadKind() Kind { return KindRecord }

// RecordAccessPayload: Children = [target].
type RecordAccessPayload struct {
	Field symbol.ID
}

func (RecordAccessPayload) payloadKind() Kind { return KindRecordAccess }

// RecordUpdatePayload: Children = [target, value1, value2, ...] parallel
// to FieldNames.
type RecordUpdatePayload struct {
	FieldNames []symbol.ID
}

func (RecordUpdatePayload) payloadKind() Kind { return KindRecordUpdate }

// --- patterns --------------------------------------------------------------

type PatternWildcardPayload struct{}

func (PatternWildcardPayload) payloadKind() Kind { return KindPatternWildcard }

type PatternLiteralPayload struct {
	LitKind LiteralKind
	Int     int64
	Float   float64
	Text    string
	Bool    bool
}

func (PatternLiteralPayload) payloadKind() Kind { return KindPatternLiteral }

type PatternVariablePayload struct {
	Name symbol.ID
}

func (PatternVariablePayload) payloadKind() Kind { return KindPatternVariable }

// PatternConstructorPayload: Children are the ordered sub-patterns.
type PatternConstructorPayload struct {
	Name symbol.ID
}

func (PatternConstructorPayload) payloadKind() Kind { return KindPatternConstructor }

// PatternRecordPayload: Children are sub-patterns parallel to FieldNames.
type PatternRecordPayload struct {
	FieldNames []symbol.ID
}

func (PatternRecordPayload) payloadKind() Kind { return KindPatternRecord }

// PatternConsPayload: Children = [head, tail].
type PatternConsPayload struct{}

func (PatternConsPayload) payloadKind() Kind { return KindPatternCons }

// PatternTuplePayload: Children are the ordered sub-patterns.
type PatternTuplePayload struct{}

func (PatternTuplePayload) payloadKind() Kind { return KindPatternTuple }

// --- literals ----------------------------------------------------------

type LiteralIntPayload struct{ Value int64 }

func (LiteralIntPayload) payloadKind() Kind { return KindLiteralInt }

type LiteralFloatPayload struct{ Value float64 }

func (LiteralFloatPayload) payloadKind() Kind { return KindLiteralFloat }

type LiteralTextPayload struct{ Value string }

func (LiteralTextPayload) payloadKind() Kind { return KindLiteralText }

type LiteralBoolPayload struct{ Value bool }

func (LiteralBoolPayload) payloadKind() Kind { return KindLiteralBool }

type LiteralUnitPayload struct{}

func (LiteralUnitPayload) payloadKind() Kind { return KindLiteralUnit }

// LiteralListPayload: Children are the ordered elements.
type LiteralListPayload struct{}

func (LiteralListPayload) payloadKind() Kind { return KindLiteralList }

// LiteralTuplePayload: Children are the ordered elements.
type LiteralTuplePayload struct{}

func (LiteralTuplePayload) payloadKind() Kind { return KindLiteralTuple }

// --- references ----------------------------------------------------------

// ReferenceSymbolicPayload resolves either to an in-AST binding from the
// enclosing scope chain or to a hashed Namespace Store definition (spec
// §3 invariant 4); which one is determined at resolve time, not encoded
// here.
type ReferenceSymbolicPayload struct {
	Qualified []symbol.ID // package-qualified path segments, possibly empty
	Name      symbol.ID
}

func (ReferenceSymbolicPayload) payloadKind() Kind { return KindReferenceSymbolic }

type ReferenceHashAnchoredPayload struct {
	Hash Digest
}

func (ReferenceHashAnchoredPayload) payloadKind() Kind { return KindReferenceHashAnchored }
