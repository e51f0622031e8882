package cms

import "time"

// seedDate is fixed at process start so repeated SeedPosts calls compare equal.
var seedDate = time.Now()

// SeedPosts returns the built-in collection shown when the CMS is unreachable or empty.
// Every call returns fresh slices.
func SeedPosts() []Post {
	return []Post{
		{
			ID:          "welcome-1",
			Slug:        "hello-world",
			Title:       "你好，世界：我的数字花园开垦计划",
			Excerpt:     "这是您的第一篇博客文章。如果您看到了这段文字，说明您的数字花园已经成功部署到了服务器上！",
			Content:     "<p>欢迎来到我的数字花园。这里正在通过 Headless WordPress 架构进行驱动。</p>",
			Author:      "Feng",
			Date:        seedDate.Format(displayDate),
			PublishedAt: seedDate,
			ModifiedAt:  seedDate,
			ReadTime:    "1 min read",
			Tags:        []string{"Welcome"},
			ImageURL:    "https://images.unsplash.com/photo-1451187580459-43490279c0fa?q=80&w=2072&auto=format&fit=crop",
		},
	}
}

// Profile identifies the site owner across the layout, about page and résumé.
type Profile struct {
	Name     string
	Title    string
	Location string
	Status   string
	Avatar   string
	Social   SocialLinks
}

// SocialLinks lists the owner's public contact points.
type SocialLinks struct {
	Email               string
	Twitter             string
	TwitterHandle       string
	GitHub              string
	WechatOA            string
	WechatOAImage       string
	WechatPersonal      string
	WechatPersonalImage string
}

// Resume is the printable résumé rendered without the standard layout.
type Resume struct {
	Name        string
	Title       string
	Email       string
	Website     string
	Location    string
	Summary     string
	Experience  []Experience
	Projects    []ResumeProject
	Development []string
	Operations  []string
	Education   Education
	Languages   []Language
	Interests   string
}

// Experience is a single role on the résumé.
type Experience struct {
	Role    string
	Company string
	Years   string
	Details []string
}

// ResumeProject highlights a project on the résumé.
type ResumeProject struct {
	Name        string
	TechStack   string
	Description string
}

// Education describes the highest degree.
type Education struct {
	Degree string
	School string
	Years  string
}

// Language is a spoken language with proficiency.
type Language struct {
	Name  string
	Level string
}

// DefaultProfile returns the owner profile.
func DefaultProfile() Profile {
	return Profile{
		Name:     "Feng",
		Title:    "Sales Ops Consultant & Frontend Engineer",
		Location: "Beijing, China",
		Status:   "Open to Work",
		Avatar:   "https://picsum.photos/seed/feng/200/200",
		Social: SocialLinks{
			Email:               "sullivan503@gmail.com",
			Twitter:             "https://x.com/sullivan617",
			TwitterHandle:       "@sullivan617",
			GitHub:              "https://github.com/sullivan503",
			WechatOA:            "疯文斋",
			WechatOAImage:       "/assets/oa-qr.jpg",
			WechatPersonal:      "Fengwenzhai503",
			WechatPersonalImage: "/assets/wechat-qr.jpg",
		},
	}
}

// DefaultResume returns the résumé content.
func DefaultResume() Resume {
	p := DefaultProfile()
	return Resume{
		Name:     "Feng (Zenith)",
		Title:    p.Title,
		Email:    p.Social.Email,
		Website:  "fengwz.me",
		Location: p.Location,
		Summary:  "具备 5 年以上技术开发与商业运营复合经验。擅长将复杂的商业流程转化为高效的技术解决方案。从全栈开发转型为 Sales Ops 专家，致力于帮助 B2B 企业通过数字化手段提升销售人效。拥有构建高可用 Web 应用与实施企业级 CRM 系统的双重能力。",
		Experience: []Experience{
			{
				Role:    "Senior Solutions Consultant",
				Company: "TechFlow Consulting Ltd., Shanghai",
				Years:   "2022 - Present",
				Details: []string{
					"主导某 SaaS 独角兽企业的 CRM 迁移项目（Salesforce to Self-hosted），通过自动化清洗 10W+ 脏数据，使销售线索流转效率提升 40%。",
					"设计并开发 'Sales Cockpit' 仪表盘，集成 ERP 与 CRM 数据，为管理层提供实时 ARR/MRR 预测，决策响应速度缩短 3 天。",
					"建立销售团队的技术培训体系，编写超过 50 篇内部 SOP 文档，降低新员工 Onboarding 时间 20%。",
				},
			},
			{
				Role:    "Full Stack Engineer",
				Company: "Creative Web Studio",
				Years:   "2019 - 2022",
				Details: []string{
					"为 10+ 客户构建高性能官网与后台管理系统。",
					"优化前端性能，将核心页面的 LCP 从 2.5s 优化至 0.8s，显著提升 SEO 排名。",
					"负责 VPS 服务器的维护与自动化部署（CI/CD），确保服务 99.9% 可用性。",
				},
			},
		},
		Projects: []ResumeProject{
			{
				Name:        "Fengwz.me (Digital Garden)",
				TechStack:   "Go, htmx, WordPress Headless, VPS",
				Description: "设计并开发个人数字花园。基于 WordPress REST API 的无头 CMS 架构，包含动态分类过滤、Bento Grid 布局与暗色模式设计。",
			},
		},
		Development: []string{"Go", "TypeScript", "htmx", "Node.js", "WordPress API"},
		Operations:  []string{"Sales Ops", "CRM Architecture", "SQL", "Data Analysis", "Process Optimization"},
		Education: Education{
			Degree: "B.S. Computer Science",
			School: "University of Technology",
			Years:  "2015 - 2019",
		},
		Languages: []Language{
			{Name: "Chinese", Level: "Native"},
			{Name: "English", Level: "Professional"},
		},
		Interests: "Reading (History & Econ), Tennis, Indie Hacking, Coffee Brewing.",
	}
}
