package store

import (
	"strings"

	"github.com/garjemarathi/community-agent/internal/models"
	"gorm.io/gorm"
)

// DBStore serves the same queries straight from the database the extractor
// fills. Useful once the dataset outgrows a flat file.
type DBStore struct {
	DB *gorm.DB
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{DB: db}
}

// likeEscaper keeps % and _ in user queries literal; FileStore matches them
// literally, so the database backend must too.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(query string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(query))) + "%"
}

func (s *DBStore) SearchMembers(query string, limit int) ([]models.Member, error) {
	limit = normalizeLimit(limit)
	pat := likePattern(query)

	var members []models.Member
	// CAST(role AS TEXT) keeps this portable between Postgres and the
	// sqlite used in tests.
	err := s.DB.
		Where(`LOWER(name) LIKE ? ESCAPE '\' OR LOWER(email) LIKE ? ESCAPE '\' OR CAST(role AS TEXT) LIKE ? ESCAPE '\' OR LOWER(city) LIKE ? ESCAPE '\'`,
			pat, pat, pat, pat).
		Limit(limit).
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (s *DBStore) SearchJobs(query string, limit int) ([]models.JobPosting, error) {
	limit = normalizeLimit(limit)
	pat := likePattern(query)

	var jobs []models.JobPosting
	err := s.DB.
		Where(`LOWER(designation) LIKE ? ESCAPE '\' OR LOWER(company) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\'`,
			pat, pat, pat, pat).
		Limit(limit).
		Find(&jobs).Error
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (s *DBStore) Stats() (Stats, error) {
	var stats Stats
	var count int64

	if err := s.DB.Model(&models.Member{}).Count(&count).Error; err != nil {
		return stats, err
	}
	stats.TotalMembers = int(count)

	if err := s.DB.Model(&models.JobPosting{}).Count(&count).Error; err != nil {
		return stats, err
	}
	stats.TotalJobs = int(count)

	if err := s.DB.Model(&models.Member{}).Where("profile_pic <> ''").Count(&count).Error; err != nil {
		return stats, err
	}
	stats.MembersWithPhotos = int(count)

	if err := s.DB.Model(&models.Member{}).Where("work_experience_count > 0").Count(&count).Error; err != nil {
		return stats, err
	}
	stats.MembersWithExperience = int(count)

	return stats, nil
}
