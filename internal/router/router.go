package router

import (
	"github.com/blues/cfl/internal/handler"
	"github.com/blues/cfl/internal/ledger"
	"github.com/gin-gonic/gin"
)

func Setup(l *ledger.Ledger) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "crowdfunding-ledger",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(l)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("/:addr", campaignHandler.GetCampaign)
			campaigns.PUT("/:addr", campaignHandler.UpdateCampaign)
			campaigns.DELETE("/:addr", campaignHandler.DestroyCampaign)
			campaigns.POST("/:addr/cancel", campaignHandler.CancelCampaign)
			campaigns.POST("/:addr/extend", campaignHandler.ExtendCampaign)
			campaigns.POST("/:addr/close", campaignHandler.CloseCampaign)
			campaigns.POST("/:addr/claim", campaignHandler.ClaimDonations)
			campaigns.GET("/:addr/contributions", campaignHandler.GetCampaignContributions)
			campaigns.GET("/:addr/stats", campaignHandler.GetCampaignStats)
		}

		// 捐赠相关路由
		donationHandler := handler.NewDonationHandler(l)
		donations := v1.Group("/campaigns/:addr/donations")
		{
			donations.POST("", donationHandler.Donate)
			donations.GET("/:donor", donationHandler.GetContribution)
			donations.POST("/:donor/cancel", donationHandler.CancelDonation)
			donations.POST("/:donor/refund", donationHandler.RefundDonation)
		}

		// 账户相关路由
		accountHandler := handler.NewAccountHandler(l)
		accounts := v1.Group("/accounts")
		{
			accounts.POST("", accountHandler.Deposit)
			accounts.GET("/:addr", accountHandler.GetAccount)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
