package services

import (
	"sort"
	"time"

	"github.com/diewo77/foodshare/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReportService is read-only aggregation over all ledgers. Individual query
// failures degrade to zero values / empty slices so a dashboard never fails
// outright; each degradation is logged.
type ReportService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewReportService(db *gorm.DB, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{DB: db, Log: log}
}

type FoodTypeStat struct {
	FoodType      string
	Count         int64
	TotalQuantity int64
}

type TopDonor struct {
	ID            uint
	Username      string
	Email         string
	TotalQuantity int64
	DonationCount int64
}

type ActiveReceiver struct {
	ID           uint
	Username     string
	Organization string
	RequestCount int64
}

type DailyStat struct {
	Date             string
	DayName          string
	Donations        int64
	Quantity         int64
	Claims           int64
	DonationsPercent float64
	QuantityPercent  float64
}

type MonthlyStat struct {
	Month     string
	Donations int64
	Quantity  int64
}

// AdminOverview is everything the admin dashboard shows.
type AdminOverview struct {
	TotalDonations int64
	TotalQuantity  int64
	TotalDonors    int64
	TotalReceivers int64

	TodayDonations int64
	TodayQuantity  int64
	TodayClaims    int64
	TodayRequests  int64

	WeekDonations int64
	WeekQuantity  int64
	WeekReceivers int64

	AvailableDonations int64
	ClaimedDonations   int64
	CompletedDonations int64

	PendingRequests   int64
	FulfilledRequests int64
	CancelledRequests int64

	FoodTypeStats   []FoodTypeStat
	RecentDonations []models.Donation
	RecentRequests  []models.FoodRequest
	TopDonors       []TopDonor
	ActiveReceivers []ActiveReceiver
	DailyStats      []DailyStat
	MonthlyStats    []MonthlyStat
}

func (s *ReportService) count(dest *int64, what string, q *gorm.DB) {
	if err := q.Count(dest).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", what), zap.Error(err))
		*dest = 0
	}
}

func (s *ReportService) sumQuantity(dest *int64, what string, q *gorm.DB) {
	var total int64
	if err := q.Select("COALESCE(sum(quantity), 0)").Scan(&total).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", what), zap.Error(err))
		*dest = 0
		return
	}
	*dest = total
}

// Overview computes the admin dashboard aggregates.
func (s *ReportService) Overview(now time.Time) AdminOverview {
	var o AdminOverview
	db := s.DB

	s.count(&o.TotalDonations, "total donations", db.Model(&models.Donation{}))
	s.sumQuantity(&o.TotalQuantity, "total quantity", db.Model(&models.Donation{}))
	s.count(&o.TotalDonors, "total donors", db.Model(&models.User{}).Where("role = ?", models.RoleDonor))
	s.count(&o.TotalReceivers, "total receivers", db.Model(&models.User{}).Where("role = ?", models.RoleReceiver))

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)
	s.count(&o.TodayDonations, "today donations",
		db.Model(&models.Donation{}).Where("created_at >= ? AND created_at < ?", dayStart, dayEnd))
	s.sumQuantity(&o.TodayQuantity, "today quantity",
		db.Model(&models.Donation{}).Where("created_at >= ? AND created_at < ?", dayStart, dayEnd))
	s.count(&o.TodayClaims, "today claims",
		db.Model(&models.Donation{}).Where("claimed_at IS NOT NULL AND claimed_at >= ? AND claimed_at < ?", dayStart, dayEnd))
	s.count(&o.TodayRequests, "today requests",
		db.Model(&models.FoodRequest{}).Where("created_at >= ? AND created_at < ?", dayStart, dayEnd))

	weekAgo := now.AddDate(0, 0, -7)
	s.count(&o.WeekDonations, "week donations", db.Model(&models.Donation{}).Where("created_at >= ?", weekAgo))
	s.sumQuantity(&o.WeekQuantity, "week quantity", db.Model(&models.Donation{}).Where("created_at >= ?", weekAgo))
	s.count(&o.WeekReceivers, "week receivers",
		db.Model(&models.FoodRequest{}).Where("created_at >= ?", weekAgo).Distinct("receiver_id"))

	s.count(&o.AvailableDonations, "available donations", db.Model(&models.Donation{}).Where("status = ?", models.DonationAvailable))
	s.count(&o.ClaimedDonations, "claimed donations", db.Model(&models.Donation{}).Where("status = ?", models.DonationClaimed))
	s.count(&o.CompletedDonations, "completed donations", db.Model(&models.Donation{}).Where("status = ?", models.DonationCompleted))

	s.count(&o.PendingRequests, "pending requests", db.Model(&models.FoodRequest{}).Where("status = ?", models.RequestPending))
	s.count(&o.FulfilledRequests, "fulfilled requests", db.Model(&models.FoodRequest{}).Where("status = ?", models.RequestFulfilled))
	s.count(&o.CancelledRequests, "cancelled requests", db.Model(&models.FoodRequest{}).Where("status = ?", models.RequestCancelled))

	if err := db.Model(&models.Donation{}).
		Select("food_type, count(id) as count, sum(quantity) as total_quantity").
		Group("food_type").Order("count desc").Limit(10).
		Scan(&o.FoodTypeStats).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "food type stats"), zap.Error(err))
		o.FoodTypeStats = nil
	}

	if err := db.Preload("Donor").Order("created_at desc").Limit(20).Find(&o.RecentDonations).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "recent donations"), zap.Error(err))
		o.RecentDonations = nil
	}
	if err := db.Preload("Receiver").Order("created_at desc").Limit(10).Find(&o.RecentRequests).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "recent requests"), zap.Error(err))
		o.RecentRequests = nil
	}

	if err := db.Model(&models.User{}).
		Select("users.id, users.username, users.email, sum(donations.quantity) as total_quantity, count(donations.id) as donation_count").
		Joins("JOIN donations ON users.id = donations.donor_id").
		Where("users.role = ?", models.RoleDonor).
		Group("users.id").Group("users.username").Group("users.email").
		Order("total_quantity desc").Limit(10).
		Scan(&o.TopDonors).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "top donors"), zap.Error(err))
		o.TopDonors = nil
	}

	if err := db.Model(&models.User{}).
		Select("users.id, users.username, users.organization, count(food_requests.id) as request_count").
		Joins("JOIN food_requests ON users.id = food_requests.receiver_id").
		Where("users.role = ?", models.RoleReceiver).
		Group("users.id").Group("users.username").Group("users.organization").
		Order("request_count desc").Limit(10).
		Scan(&o.ActiveReceivers).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "active receivers"), zap.Error(err))
		o.ActiveReceivers = nil
	}

	o.DailyStats = s.dailySeries(dayStart)
	o.MonthlyStats = s.monthlySeries(now)
	return o
}

// dailySeries builds the last-7-days bars. Percentages are scaled against the
// busiest day, floored at 5% so a non-zero day still shows a bar.
func (s *ReportService) dailySeries(todayStart time.Time) []DailyStat {
	stats := make([]DailyStat, 0, 7)
	var maxDonations, maxQuantity int64
	for i := 6; i >= 0; i-- {
		start := todayStart.AddDate(0, 0, -i)
		end := start.Add(24 * time.Hour)
		st := DailyStat{Date: start.Format("2006-01-02"), DayName: start.Format("Mon")}
		s.count(&st.Donations, "daily donations",
			s.DB.Model(&models.Donation{}).Where("created_at >= ? AND created_at < ?", start, end))
		s.sumQuantity(&st.Quantity, "daily quantity",
			s.DB.Model(&models.Donation{}).Where("created_at >= ? AND created_at < ?", start, end))
		s.count(&st.Claims, "daily claims",
			s.DB.Model(&models.Donation{}).Where("claimed_at IS NOT NULL AND claimed_at >= ? AND claimed_at < ?", start, end))
		if st.Donations > maxDonations {
			maxDonations = st.Donations
		}
		if st.Quantity > maxQuantity {
			maxQuantity = st.Quantity
		}
		stats = append(stats, st)
	}
	for i := range stats {
		stats[i].DonationsPercent = barPercent(stats[i].Donations, maxDonations)
		stats[i].QuantityPercent = barPercent(stats[i].Quantity, maxQuantity)
	}
	return stats
}

func barPercent(v, maxV int64) float64 {
	if v <= 0 || maxV <= 0 {
		return 0
	}
	pct := float64(v) / float64(maxV) * 100
	if pct < 5 {
		return 5
	}
	return pct
}

// monthlySeries buckets the last ~6 months in Go rather than relying on
// driver-specific date formatting (strftime vs to_char).
func (s *ReportService) monthlySeries(now time.Time) []MonthlyStat {
	since := now.AddDate(0, 0, -180)
	var rows []struct {
		CreatedAt time.Time
		Quantity  int64
	}
	if err := s.DB.Model(&models.Donation{}).
		Select("created_at, quantity").
		Where("created_at >= ?", since).
		Scan(&rows).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "monthly stats"), zap.Error(err))
		return nil
	}
	byMonth := map[string]*MonthlyStat{}
	var order []string
	for _, r := range rows {
		m := r.CreatedAt.Format("2006-01")
		st, ok := byMonth[m]
		if !ok {
			st = &MonthlyStat{Month: m}
			byMonth[m] = st
			order = append(order, m)
		}
		st.Donations++
		st.Quantity += r.Quantity
	}
	sort.Strings(order)
	out := make([]MonthlyStat, 0, len(order))
	for _, m := range order {
		out = append(out, *byMonth[m])
	}
	return out
}

// DonorStats are the per-donor dashboard numbers, also the badge inputs.
type DonorStats struct {
	TotalDonations     int64
	TotalQuantity      int64
	ClaimedDonations   int64
	CompletedDonations int64
}

func (s *ReportService) DonorStats(donorID uint) DonorStats {
	var st DonorStats
	s.count(&st.TotalDonations, "donor donations", s.DB.Model(&models.Donation{}).Where("donor_id = ?", donorID))
	s.sumQuantity(&st.TotalQuantity, "donor quantity", s.DB.Model(&models.Donation{}).Where("donor_id = ?", donorID))
	s.count(&st.ClaimedDonations, "donor claimed", s.DB.Model(&models.Donation{}).Where("donor_id = ? AND status = ?", donorID, models.DonationClaimed))
	s.count(&st.CompletedDonations, "donor completed", s.DB.Model(&models.Donation{}).Where("donor_id = ? AND status = ?", donorID, models.DonationCompleted))
	return st
}

// DonorMonthly is the donor dashboard's 6-month quantity series.
func (s *ReportService) DonorMonthly(donorID uint, now time.Time) []MonthlyStat {
	since := now.AddDate(0, 0, -180)
	var rows []struct {
		CreatedAt time.Time
		Quantity  int64
	}
	if err := s.DB.Model(&models.Donation{}).
		Select("created_at, quantity").
		Where("donor_id = ? AND created_at >= ?", donorID, since).
		Scan(&rows).Error; err != nil {
		s.Log.Warn("report query degraded", zap.String("query", "donor monthly"), zap.Error(err))
		return nil
	}
	byMonth := map[string]*MonthlyStat{}
	var order []string
	for _, r := range rows {
		m := r.CreatedAt.Format("2006-01")
		st, ok := byMonth[m]
		if !ok {
			st = &MonthlyStat{Month: m}
			byMonth[m] = st
			order = append(order, m)
		}
		st.Donations++
		st.Quantity += r.Quantity
	}
	sort.Strings(order)
	out := make([]MonthlyStat, 0, len(order))
	for _, m := range order {
		out = append(out, *byMonth[m])
	}
	return out
}

// Badge is an achievement unlocked by fixed donation thresholds.
type Badge struct {
	Name string
	Icon string
}

// BadgesFor computes the donor badges from their stats. Thresholds are fixed.
func BadgesFor(st DonorStats) []Badge {
	var badges []Badge
	if st.TotalDonations >= 1 {
		badges = append(badges, Badge{Name: "First Donation", Icon: "🥉"})
	}
	if st.TotalDonations >= 5 {
		badges = append(badges, Badge{Name: "Regular Donor", Icon: "🥈"})
	}
	if st.TotalDonations >= 10 {
		badges = append(badges, Badge{Name: "Super Donor", Icon: "🥇"})
	}
	if st.TotalQuantity >= 100 {
		badges = append(badges, Badge{Name: "Century Club", Icon: "💯"})
	}
	if st.TotalQuantity >= 500 {
		badges = append(badges, Badge{Name: "Hero Donor", Icon: "🌟"})
	}
	if st.CompletedDonations >= 20 {
		badges = append(badges, Badge{Name: "Impact Maker", Icon: "🏆"})
	}
	return badges
}

// Summary are the headline numbers used by the CSV export tooling.
type Summary struct {
	TotalUsers     int64
	TotalDonors    int64
	TotalReceivers int64
	TotalAdmins    int64
	TotalDonations int64
	TotalQuantity  int64
	TotalRequests  int64
}

func (s *ReportService) Summarize() Summary {
	var sum Summary
	s.count(&sum.TotalUsers, "total users", s.DB.Model(&models.User{}))
	s.count(&sum.TotalDonors, "total donors", s.DB.Model(&models.User{}).Where("role = ?", models.RoleDonor))
	s.count(&sum.TotalReceivers, "total receivers", s.DB.Model(&models.User{}).Where("role = ?", models.RoleReceiver))
	s.count(&sum.TotalAdmins, "total admins", s.DB.Model(&models.User{}).Where("role = ?", models.RoleAdmin))
	s.count(&sum.TotalDonations, "total donations", s.DB.Model(&models.Donation{}))
	s.sumQuantity(&sum.TotalQuantity, "total quantity", s.DB.Model(&models.Donation{}))
	s.count(&sum.TotalRequests, "total requests", s.DB.Model(&models.FoodRequest{}))
	return sum
}
