// Package scheduler вычисляет слоты учебных сессий по cron-выражениям.
//
// Используется агентом расписания: первая сессия ставится в ближайший
// слот после текущего момента, следующие — в последующие слоты.
//
//	slots, err := scheduler.Slots("0 9 * * *", time.Now(), 3)
//	// три ближайших 9:00, в UTC
//
// Предпочтительное время студента (morning/afternoon/evening/night)
// отображается в выражение через PreferenceCron.
package scheduler
