package core

// ProfileName 规则配置名称
type ProfileName string

const (
	ProfileClassic       ProfileName = "classic-136"    // 经典 136 张, 可吃, 含字牌
	ProfileSichuan       ProfileName = "sichuan-108"    // 四川血战到底 108 张
	ProfileSichuanStrict ProfileName = "sichuan-strict" // 四川血战, 封顶番数
)

// DefaultFanCap 默认封顶番数
const DefaultFanCap = 13

// Profile 规则配置, 决定牌墙组成、副露合法性、和牌型及计分封顶
type Profile struct {
	Name            ProfileName `json:"name" mapstructure:"name"`
	Seats           int         `json:"seats" mapstructure:"seats"`
	HandSize        int         `json:"handSize" mapstructure:"hand_size"`
	Honors          bool        `json:"honors" mapstructure:"honors"`                    // 是否含字牌
	Flowers         bool        `json:"flowers" mapstructure:"flowers"`                  // 是否含花牌
	AllowChi        bool        `json:"allowChi" mapstructure:"allow_chi"`               // 是否允许吃
	ThirteenOrphans bool        `json:"thirteenOrphans" mapstructure:"thirteen_orphans"` // 十三幺
	QuadPairs       bool        `json:"quadPairs" mapstructure:"quad_pairs"`             // 七对中四张算两对 (龙七对)
	DingQue         bool        `json:"dingQue" mapstructure:"ding_que"`                 // 定缺
	BattleToEnd     bool        `json:"battleToEnd" mapstructure:"battle_to_end"`        // 血战到底: 胡牌者退出, 其余继续
	AllSimples      bool        `json:"allSimples" mapstructure:"all_simples"`           // 断幺九
	TerminalsHonors bool        `json:"terminalsHonors" mapstructure:"terminals_honors"` // 混幺九
	FanCap          int         `json:"fanCap" mapstructure:"fan_cap"`                   // 封顶番数, 0 为不封顶
	BaseScore       int         `json:"baseScore" mapstructure:"base_score"`             // 底分
	Ghosts          []Tile      `json:"ghosts,omitempty" mapstructure:"-"`               // 癞子牌
}

// ClassicProfile 经典麻将
func ClassicProfile() Profile {
	return Profile{
		Name:            ProfileClassic,
		Seats:           4,
		HandSize:        13,
		Honors:          true,
		AllowChi:        true,
		ThirteenOrphans: true,
		AllSimples:      true,
		TerminalsHonors: true,
		BaseScore:       1,
	}
}

// SichuanProfile 四川血战到底
func SichuanProfile() Profile {
	return Profile{
		Name:        ProfileSichuan,
		Seats:       4,
		HandSize:    13,
		QuadPairs:   true,
		DingQue:     true,
		BattleToEnd: true,
		BaseScore:   1,
	}
}

// SichuanStrictProfile 四川血战到底 (断幺九 + 封顶)
func SichuanStrictProfile() Profile {
	p := SichuanProfile()
	p.Name = ProfileSichuanStrict
	p.AllSimples = true
	p.FanCap = DefaultFanCap
	return p
}

// ProfileByName 按名称获取规则配置
func ProfileByName(name string) (Profile, error) {
	switch ProfileName(name) {
	case ProfileClassic:
		return ClassicProfile(), nil
	case ProfileSichuan:
		return SichuanProfile(), nil
	case ProfileSichuanStrict:
		return SichuanStrictProfile(), nil
	default:
		return Profile{}, ErrInvalidProfile.WithContext("name", name)
	}
}

// Clone 深拷贝
func (p Profile) Clone() Profile {
	p.Ghosts = CloneTiles(p.Ghosts)
	return p
}

// WallSize 牌墙总张数
func (p Profile) WallSize() int {
	n := 3 * 9 * 4
	if p.Honors {
		n += 7 * 4
	}
	if p.Flowers {
		n += 8
	}
	return n
}

// IsGhost 是否癞子牌
func (p Profile) IsGhost(t Tile) bool {
	return ContainsTile(p.Ghosts, t)
}

// Validate 校验配置, 错误在开局前即为致命错误
func (p Profile) Validate() error {
	switch p.Name {
	case ProfileClassic, ProfileSichuan, ProfileSichuanStrict:
	default:
		return ErrInvalidProfile.WithContext("name", p.Name)
	}
	if p.Seats < 2 || p.Seats > 4 {
		return ErrInvalidSeats.WithContext("seats", p.Seats)
	}
	if p.HandSize <= 0 {
		return ErrInvalidProfile.WithContext("handSize", p.HandSize)
	}
	if p.Seats*p.HandSize+1 > p.WallSize() {
		return ErrWallTooSmall.WithContext("wallSize", p.WallSize()).WithContext("seats", p.Seats)
	}
	if p.FanCap < 0 {
		return ErrInvalidProfile.WithContext("fanCap", p.FanCap)
	}
	for _, g := range p.Ghosts {
		if !g.Valid() || g.IsFlower() || (g.IsHonor() && !p.Honors) {
			return ErrInvalidProfile.WithContext("ghost", g.String())
		}
	}
	return nil
}
