package cron

import (
	"log"

	"github.com/salmamehrez85/UniMate/model"
)

// SyncCourseCompletions walks every course and re-derives the completion
// state from its assessments. The API keeps this in sync on every write;
// the sweep only repairs rows touched by older clients or manual edits.
func (m *CronManager) SyncCourseCompletions() {
	log.Println("[CRON] Syncing course completion state...")

	var courses []model.Course
	if err := m.db.Find(&courses).Error; err != nil {
		log.Printf("[CRON] Failed to load courses: %v", err)
		return
	}

	updated := 0
	for i := range courses {
		course := &courses[i]
		if !course.SyncCompletion() {
			continue
		}
		if err := m.db.Model(&model.Course{}).
			Where("id = ?", course.ID).
			Updates(map[string]interface{}{
				"is_old_course": course.IsOldCourse,
				"final_grade":   course.FinalGrade,
			}).Error; err != nil {
			log.Printf("[CRON] Failed to update course %d: %v", course.ID, err)
			continue
		}
		updated++
	}

	log.Printf("[CRON] Completion sync done: %d of %d courses updated", updated, len(courses))
}
