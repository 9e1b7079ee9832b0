package domain

type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:120;not null"`
	Slug string `json:"slug" gorm:"size:140;uniqueIndex;not null"`
}

type Ingredient struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	Name        string  `json:"name" gorm:"size:120;index;not null"`
	UnitDefault *string `json:"unitDefault" gorm:"size:16"`
}
