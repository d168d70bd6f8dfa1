package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// CustomerProfile là profile khách từ file sổ đăng ký (customers), 1 document
// per CPF. Upsert không lùi: ngày/số đếm chỉ nhận max(giá trị cũ, giá trị mới),
// còn field profile (tên, điện thoại, email, ví) luôn cập nhật.
type CustomerProfile struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Doc      string `json:"doc" bson:"doc"`
	Nome     string `json:"nome,omitempty" bson:"nome,omitempty"`
	Telefone string `json:"telefone,omitempty" bson:"telefone,omitempty"`
	Email    string `json:"email,omitempty" bson:"email,omitempty"`

	DataCadastro  int64   `json:"dataCadastro,omitempty" bson:"dataCadastro,omitempty"` // Unix ms
	SaldoCarteira float64 `json:"saldoCarteira" bson:"saldoCarteira"`
	FirstVisit    int64   `json:"firstVisit,omitempty" bson:"firstVisit,omitempty"` // Unix ms
	LastVisit     int64   `json:"lastVisit,omitempty" bson:"lastVisit,omitempty"`   // Unix ms

	TransactionCount int     `json:"transactionCount" bson:"transactionCount"`
	TotalSpent       float64 `json:"totalSpent" bson:"totalSpent"`

	Source    string `json:"source,omitempty" bson:"source,omitempty"`
	UpdatedAt int64  `json:"updatedAt" bson:"updatedAt"`
}

// Segmentation là 1 dòng feed phân khúc RFM (segmentation), 1 document per CPF.
// Nhãn segment do hệ thống marketing bên ngoài tính, ở đây chỉ lưu và merge.
type Segmentation struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`

	Doc           string `json:"doc" bson:"doc"`
	Segmento      string `json:"segmento" bson:"segmento"` // VIP | Frequente | Promissor | Novato | Esfriando | Inativo | Não Classificado
	Nome          string `json:"nome,omitempty" bson:"nome,omitempty"`
	Telefone      string `json:"telefone,omitempty" bson:"telefone,omitempty"`
	UltimoContato int64  `json:"ultimoContato,omitempty" bson:"ultimoContato,omitempty"` // Unix ms

	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}
