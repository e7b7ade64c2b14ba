package repositories

import (
	"gorm.io/gorm"

	"rideboard-api/models"
)

// GormTripRepository is the durable TripRepository backed by gorm.
type GormTripRepository struct {
	db *gorm.DB
}

func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

func (r *GormTripRepository) Insert(trip *models.TripRecord) error {
	return r.db.Create(trip).Error
}

func (r *GormTripRepository) applyFilter(filter TripFilter) *gorm.DB {
	query := r.db.Model(&models.TripRecord{})
	if filter.RouteKey != "" {
		query = query.Where("route_key = ?", filter.RouteKey)
	}
	if filter.Date != "" {
		query = query.Where("date = ?", filter.Date)
	}
	if filter.Contact != "" {
		query = query.Where("contact = ?", filter.Contact)
	}
	if filter.OptedIn {
		query = query.Where("notify_matches = ? AND email <> ''", true)
	}
	return query
}

func (r *GormTripRepository) Find(filter TripFilter) ([]models.TripRecord, error) {
	var trips []models.TripRecord
	if err := r.applyFilter(filter).Order("created_at ASC").Find(&trips).Error; err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *GormTripRepository) FindByContact(contact string) ([]models.TripRecord, error) {
	var trips []models.TripRecord
	err := r.db.Where("contact = ?", contact).Order("created_at DESC").Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *GormTripRepository) Count(filter TripFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(filter).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DeleteOne removes a record only when both id and contact match. The
// contact comparison is the system's only access-control check.
func (r *GormTripRepository) DeleteOne(id, contact string) (bool, error) {
	result := r.db.Where("id = ? AND contact = ?", id, contact).Delete(&models.TripRecord{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteExpiredBefore removes all records whose travel date sorts before
// the given ISO date. ISO dates compare lexicographically, so this is a
// plain string comparison in SQL.
func (r *GormTripRepository) DeleteExpiredBefore(date string) (int64, error) {
	result := r.db.Where("date < ?", date).Delete(&models.TripRecord{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
