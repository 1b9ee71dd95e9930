package service

import (
	"github.com/yi-nology/stl_backend/biz/dal/db"
	"gorm.io/gorm"
)

// Logic contains business rules on top of data persistence.
type Logic struct {
	db           *gorm.DB
	customerDAO  *db.CustomerDAO
	plantDAO     *db.PlantDAO
	lineDAO      *db.LineDAO
	tankGroupDAO *db.TankGroupDAO
	tankDAO      *db.TankDAO
}

func NewLogic(dbConn *gorm.DB) *Logic {
	return &Logic{
		db:           dbConn,
		customerDAO:  db.NewCustomerDAO(),
		plantDAO:     db.NewPlantDAO(),
		lineDAO:      db.NewLineDAO(),
		tankGroupDAO: db.NewTankGroupDAO(),
		tankDAO:      db.NewTankDAO(),
	}
}
