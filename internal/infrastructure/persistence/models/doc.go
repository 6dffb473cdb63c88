// Package models holds the gorm persistence models and their mappers. Domain
// types carry no ORM concerns; repositories convert at the boundary.
//
// Money columns are decimal(20,8) so that unrounded allocation results survive
// a round trip exactly.
package models
