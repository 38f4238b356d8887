package product

// Defaults returns the curated list served when no personalized match exists.
// The slice is freshly allocated on every call.
func Defaults() []Product {
	return []Product{
		{
			Name:           "欧莱雅复颜玻尿酸水光充盈导入精华面霜",
			Brand:          "欧莱雅",
			Category:       "面霜",
			SuitableAge:    DefaultSuitableAge,
			TargetConcerns: []string{"干燥", "细纹", "暗沉"},
			KeyIngredients: []string{"玻尿酸", "神经酰胺", "维生素E"},
			Benefits:       []string{"保湿", "抗皱", "提亮"},
			Usage: Usage{
				Frequency:   "每日两次",
				Method:      "洁面后，取适量均匀涂抹于面部",
				Timing:      "早晚",
				Precautions: "避免接触眼睛",
			},
			ExpectedResults:   "使用2周后肌肤更加水润透亮",
			LifestyleTips:     []string{"多喝水", "注意防晒"},
			SuitableSkinTypes: []string{},
			Tags:              []string{},
		},
		{
			Name:           "欧莱雅清润葡萄籽精华液",
			Brand:          "欧莱雅",
			Category:       "精华液",
			SuitableAge:    DefaultSuitableAge,
			TargetConcerns: []string{"抗氧化", "暗沉", "细纹"},
			KeyIngredients: []string{"葡萄籽提取物", "维生素C", "透明质酸"},
			Benefits:       []string{"抗氧化", "提亮", "保湿"},
			Usage: Usage{
				Frequency:   "每日两次",
				Method:      "洁面后，取3-4滴轻拍吸收",
				Timing:      "早晚",
				Precautions: "避免接触眼睛",
			},
			ExpectedResults:   "使用4周后肌肤更加明亮有弹性",
			LifestyleTips:     []string{"均衡饮食", "充足睡眠"},
			SuitableSkinTypes: []string{},
			Tags:              []string{},
		},
		{
			Name:           "欧莱雅青春密码活颜精华肌底液",
			Brand:          "欧莱雅",
			Category:       "精华液",
			SuitableAge:    DefaultSuitableAge,
			TargetConcerns: []string{"衰老", "弹性", "细纹"},
			KeyIngredients: []string{"益生菌提取物", "透明质酸", "烟酰胺"},
			Benefits:       []string{"抗衰老", "紧致", "修护"},
			Usage: Usage{
				Frequency:   "每日两次",
				Method:      "洁面后第一步使用，轻拍至吸收",
				Timing:      "早晚",
				Precautions: "敏感肌肤请先做皮肤测试",
			},
			ExpectedResults:   "使用8周后肌肤更加紧致有弹性",
			LifestyleTips:     []string{"避免熬夜", "定期做面部按摩"},
			SuitableSkinTypes: []string{},
			Tags:              []string{},
		},
	}
}
