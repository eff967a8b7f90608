package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles a user can hold. The empty role is a regular member.
const (
	RoleMember  = ""
	RoleTrainer = "trainer"
	RoleAdmin   = "admin"
)

// Payment states attached to a trainer promotion.
const (
	PaymentNone    = ""
	PaymentPending = "pending"
)

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	Email       string             `bson:"email" json:"email"`
	DisplayName string             `bson:"displayName,omitempty" json:"displayName,omitempty"`
	PhotoURL    string             `bson:"photoURL,omitempty" json:"photoURL,omitempty"`
	Role        string             `bson:"role,omitempty" json:"role,omitempty"`
	Payment     string             `bson:"payment,omitempty" json:"payment,omitempty"`
	Timestamp   int64              `bson:"timestamp,omitempty" json:"timestamp,omitempty"`
}
