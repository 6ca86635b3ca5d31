package scheduler

import (
	"time"

	"github.com/blues/cfl/internal/config"
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CampaignStatsJob 活动统计任务。状态迁移全部由外部调用触发，这个任务只做
// 观测：汇总各状态活动数量、托管总额，并提醒临近截止的活动。
type CampaignStatsJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewCampaignStatsJob 创建活动统计任务
func NewCampaignStatsJob(db *gorm.DB, cfg *config.Config) *CampaignStatsJob {
	return &CampaignStatsJob{
		db:     db,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *CampaignStatsJob) GetName() string {
	return "campaign_stats_reporter"
}

// GetSchedule 获取调度配置
func (j *CampaignStatsJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignStatsJob) Execute() {
	now := time.Now()

	// 统计各状态活动数量
	type statusCount struct {
		Status string
		Count  int64
	}
	var counts []statusCount
	if err := j.db.Model(&model.Campaign{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		logger.Error("Failed to count campaigns by status: %v", err)
		return
	}
	for _, c := range counts {
		logger.Info("Campaign stats: status=%s count=%d", c.Status, c.Count)
	}

	// 统计托管总额
	var totalEscrowed float64
	if err := j.db.Model(&model.EscrowAccount{}).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&totalEscrowed).Error; err != nil {
		logger.Error("Failed to sum escrow balances: %v", err)
		return
	}
	logger.Info("Campaign stats: total escrowed %f", totalEscrowed)

	// 冻结的托管账户说明记账不变量被破坏，持续告警
	var frozenCount int64
	if err := j.db.Model(&model.EscrowAccount{}).
		Where("frozen = ?", true).
		Count(&frozenCount).Error; err != nil {
		logger.Error("Failed to count frozen escrow accounts: %v", err)
		return
	}
	if frozenCount > 0 {
		logger.Error("Campaign stats: %d escrow accounts frozen, manual inspection required", frozenCount)
	}

	// 提醒24小时内截止且未达标的活动
	var expiring []model.Campaign
	if err := j.db.Where("status IN ?", []model.CampaignStatus{
		model.CampaignStatusPending,
		model.CampaignStatusActive,
	}).Where("end_at BETWEEN ? AND ?", now, now.Add(24*time.Hour)).
		Find(&expiring).Error; err != nil {
		logger.Error("Failed to fetch expiring campaigns: %v", err)
		return
	}
	for _, campaign := range expiring {
		logger.Info("Campaign %s ('%s') ends at %s with %f of %f donated",
			campaign.Address, campaign.Title, campaign.EndAt, campaign.TotalDonated, campaign.Goal)
	}
}
