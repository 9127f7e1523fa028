package ast

type (
	FileID    uint32
	ExprID    uint32
	PatternID uint32
	PayloadID uint32
	// BindingID ссылается на запись в таблице символов; заполняется резолвером.
	BindingID uint32
)

const (
	NoFileID    FileID    = 0
	NoExprID    ExprID    = 0
	NoPatternID PatternID = 0
	NoPayloadID PayloadID = 0
	// UnresolvedBinding - значение по умолчанию, пока биндер не прошёл по узлу.
	UnresolvedBinding BindingID = 0
)

func (id FileID) IsValid() bool    { return id != NoFileID }
func (id ExprID) IsValid() bool    { return id != NoExprID }
func (id PatternID) IsValid() bool { return id != NoPatternID }
func (id BindingID) IsResolved() bool {
	return id != UnresolvedBinding
}
