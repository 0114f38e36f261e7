package audit

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	entity "erp.GO/model/entity"
)

// Record writes an activity row inside the caller's transaction so the audit
// trail commits or rolls back together with the mutation it describes.
func Record(tx *gorm.DB, actor *entity.User, action, entityName string, refID uint, detail interface{}) error {
	var payload datatypes.JSON
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return err
		}
		payload = datatypes.JSON(b)
	}
	var userID *uint
	if actor != nil {
		id := actor.UserID
		userID = &id
	}
	return tx.Create(&entity.ActivityLog{
		UserID: userID,
		Action: action,
		Entity: entityName,
		RefID:  refID,
		Detail: payload,
	}).Error
}

// Recent returns the newest activity entries, most recent first.
func Recent(db *gorm.DB, limit int) ([]entity.ActivityLog, error) {
	if limit <= 0 {
		limit = 100
	}
	var entries []entity.ActivityLog
	err := db.Order("log_id DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
