package seat

import (
	"math/rand"

	"event-rsvp-service/internal/model"
	apperrors "event-rsvp-service/pkg/app_errors"
)

// Allocate 在成功的條件式保留之後挑選座位。
// confirmedCount 必須是保留 UPDATE 回傳的遞增後數值，不可另外查詢。
// taken 是同一 transaction 內查到的已佔用座位。
//
// sequential: 優先用 confirmedCount（第 N 位確認者拿座位 N）；
// 若該座位因先前有人取消而被補位者佔走，退回最小空位。
// random: 從 [1, maxCapacity] 扣掉 taken 後均勻隨機挑選。
//
// 保留成功卻找不到空位代表帳本與報名紀錄脫鉤，回傳 ErrSeatExhausted。
func Allocate(policy model.SeatPolicy, maxCapacity, confirmedCount int, taken []int) (int, error) {
	occupied := make(map[int]bool, len(taken))
	for _, s := range taken {
		occupied[s] = true
	}

	switch policy {
	case model.SeatPolicyRandom:
		free := make([]int, 0, maxCapacity-len(taken))
		for s := 1; s <= maxCapacity; s++ {
			if !occupied[s] {
				free = append(free, s)
			}
		}
		if len(free) == 0 {
			return 0, apperrors.ErrSeatExhausted
		}
		return free[rand.Intn(len(free))], nil
	default:
		if confirmedCount >= 1 && confirmedCount <= maxCapacity && !occupied[confirmedCount] {
			return confirmedCount, nil
		}
		for s := 1; s <= maxCapacity; s++ {
			if !occupied[s] {
				return s, nil
			}
		}
		return 0, apperrors.ErrSeatExhausted
	}
}
