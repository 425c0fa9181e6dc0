// Package models contains GORM persistence models and flattened query rows.
// They are kept apart from the domain packages; every model maps to its
// domain type through ToDomain.
package models
